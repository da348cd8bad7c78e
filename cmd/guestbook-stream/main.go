// Command guestbook-stream is the AWS Lambda entrypoint for the guestbook
// table's DynamoDB stream. It logs and announces entries written to the
// table.
package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jacentio/guestbook/internal/config"
	"github.com/jacentio/guestbook/notify"
	"github.com/jacentio/guestbook/stream"
)

func main() {
	cfg, err := config.Load(os.Getenv("GUESTBOOK_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cfg.Logger(os.Stderr)

	handler := stream.NewHandler(cfg.Stream(), nil, notify.NewLog(logger), logger)
	lambda.Start(handler.HandleEntriesChanged)
}
