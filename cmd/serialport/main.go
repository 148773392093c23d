/*
Copyright © 2025 seeacloud
*/
package main

import "github.com/seeacloud/node-serialport/cmd"

func main() {
	cmd.Execute()
}
