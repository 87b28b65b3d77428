package docket_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aretw0/docket"
)

// ExampleAssistant_Send walks the affidavit dialogue with the offline defaults.
func ExampleAssistant_Send() {
	a, err := docket.New()
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	for _, text := range []string{"/start", "2", "1", "My name is Jane Doe", "123 Main Street, Delhi 110001", "for travel"} {
		reply, err := a.Send(ctx, "example", text)
		if err != nil {
			log.Fatal(err)
		}
		if reply.Outcome.Field != "" {
			fmt.Println(reply.Outcome.Field)
		}
	}

	reply, err := a.Send(ctx, "example", "I was present at the event")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reply.Outcome.Kind)
	fmt.Println(strings.HasPrefix(reply.Artifacts[0].Filename, "affidavit_"))
	// Output:
	// address
	// purpose
	// facts
	// generated
	// true
}
