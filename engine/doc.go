// Package engine provides the cycle-level discrete-event simulation
// kernel: the clock, the cooperative task executor, event primitives, and
// the port rendezvous layer every component and fabric model is built on.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - clock.go: ClockTick, Clock, the scheduled-wait list and Resolver
//     two-phase commit
//   - task.go: Task, Executor, TaskWaker -- cooperative scheduling with a
//     goroutine as call-stack storage
//   - port.go: PortState, InPort, OutPort -- the single-slot rendezvous
//     channel every component is wired together with
//   - event.go: Once and Repeated, the wake signals components listen on
//
// # Architecture
//
// engine has no notion of components, fabrics, or traffic -- those live in
// sibling packages built on top of it. Engine.Run drives the executor and
// clock together until no non-background task is left blocked.
package engine
