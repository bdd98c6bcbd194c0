// Package notify 中断到任务的通知原语
//
// 中断侧（Post / TryAcquire / Set）全部非阻塞，不持锁、不做 I/O；
// 阻塞只发生在任务侧（Wait / Receive）。
package notify
