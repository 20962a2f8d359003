package main

import "github.com/zikwall/dataframe-buffer/cmd"

func main() {
	cmd.Execute()
}
