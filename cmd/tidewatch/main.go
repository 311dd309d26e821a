// Command tidewatch prints tide tables and checks stations from a terminal.
package main

func main() {
	Execute()
}
