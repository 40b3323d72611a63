// Command drover runs computer-use agents against sandboxed instances.
package main

func main() {
	Execute()
}
