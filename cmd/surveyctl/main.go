package main

import (
	"context"

	"github.com/SAP-F-2025/survey-assistant/cmd/surveyctl/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
