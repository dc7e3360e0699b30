// Command vmsim runs batches of virtual address translations against a
// simulated two-level paged memory system.
package main

func main() {
	Execute()
}
