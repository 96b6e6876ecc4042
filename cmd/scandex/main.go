// Command scandex is the CLI harness over the scandex document store
// (ambient, non-core), adapted from the teacher's cmd/*.go cobra
// wiring and internal/executor's colored status output.
package main

func main() {
	Execute()
}
