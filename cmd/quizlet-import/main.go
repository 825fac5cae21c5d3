package main

import (
	"quizlet-importer/cmd/quizlet-import/commands"
	"quizlet-importer/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
