package main

import "github.com/suparena/eventgraph/processor"

func main() {
	processor.Main()
}
