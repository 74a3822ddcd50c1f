package formflow_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/domain"
)

// ExampleNew demonstrates driving a form stored as editor JSON.
func ExampleNew() {
	repo, err := memory.NewRepositoryFromJSON(map[string]string{
		"newsletter": `{
			"title": "Newsletter",
			"schema": {
				"nodes": [
					{"id": "start", "type": "start", "data": {"label": "Join our newsletter"}},
					{"id": "email", "type": "input", "data": {"label": "Your email", "validation": {"required": true}}}
				],
				"edges": [{"id": "e1", "source": "start", "target": "email"}]
			}
		}`,
	})
	if err != nil {
		log.Fatal(err)
	}

	engine, err := formflow.New(repo)
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	// An anonymous visitor sees the entry node.
	resp, err := engine.Handle(ctx, domain.Request{FormID: "newsletter"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(resp.State, resp.Descriptor.Description)

	// A participant moves past the start node.
	resp, err = engine.Handle(ctx, domain.Request{FormID: "newsletter", ParticipantID: "wallet-1", Submit: true})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(resp.State, resp.NodeID, resp.Descriptor.Links.Actions[0].Href)

	// Output:
	// at_entry Join our newsletter
	// advanced email /api/actions/forms/newsletter?node=email
}
