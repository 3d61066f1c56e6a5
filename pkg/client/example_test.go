package client_test

import (
	"context"
	"fmt"

	"github.com/fusering/fusering/pkg/client"
)

func ExampleBoardBuilder() {
	board := client.NewBoard("opening").
		Numbered(1).
		Numbered(2).
		Numbered(3).
		Numbered(1).
		Build()

	fmt.Printf("Board: %s\n", board.Name)
	fmt.Printf("Tokens: %d\n", len(board.Tokens))

	// Example: create the game on a server (commented out for test)
	// ctx := context.Background()
	// c := client.New("http://localhost:8080")
	// state, err := c.CreateGame(ctx, "", board)
	// if err != nil {
	// 	log.Fatal(err)
	// }

	// Output:
	// Board: opening
	// Tokens: 4
}

func ExampleClient_Insert() {
	ctx := context.Background()
	c := client.New("http://localhost:8080")

	// This would apply an insert move on the server.
	// Uncomment to actually send:
	// state, err := c.Insert(ctx, "game-1", client.Accelerator(), 0)
	// if err != nil {
	// 	log.Fatal(err)
	// }

	_ = ctx
	_ = c
}

func ExampleClient_RegisterWebSocketNotifier() {
	ctx := context.Background()
	c := client.New("http://localhost:8080")

	// Register a websocket notifier and route a new game's events to it.
	// Uncomment to actually send:
	// if err := c.RegisterWebSocketNotifier(ctx, "ws-1"); err != nil {
	// 	log.Fatal(err)
	// }
	// board := client.NewBoard("live").Numbered(1).Numbered(2).Build()
	// state, err := c.CreateGame(ctx, "", board, "ws-1")

	_ = ctx
	_ = c
}
