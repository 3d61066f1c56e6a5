// demo drives the board engine directly: it builds a small ring, plays a
// few moves that trigger single and chained fusions, and prints every
// event. Useful as a smoke test and as an example of embedding the engine
// without the server.
package main

import (
	"fmt"
	"log"

	"github.com/fusering/fusering/internal/field"
)

type printingListener struct{}

func (printingListener) OnInsert(index int, token field.Token) {
	fmt.Printf("  insert  %s at %d\n", token, index)
}

func (printingListener) OnReaction(ccwIndex, centerIndex, cwIndex int, result field.Token, resultIndex int) {
	fmt.Printf("  fusion  (%d %d %d) -> %s at %d\n", ccwIndex, centerIndex, cwIndex, result, resultIndex)
}

func (printingListener) OnRemove(index int) {
	fmt.Printf("  remove  index %d\n", index)
}

func main() {
	catalog := field.DefaultCatalog()

	lookup := func(n int) field.Token {
		tok, err := catalog.Lookup(n)
		if err != nil {
			log.Fatalf("catalog: %v", err)
		}
		return tok
	}

	ring, err := field.NewRing(catalog, []field.Token{
		lookup(1), lookup(2), lookup(3), lookup(1),
	})
	if err != nil {
		log.Fatalf("cannot build ring: %v", err)
	}
	ring.AddListener(printingListener{})

	fmt.Printf("start: %s\n", ring)

	fmt.Println("inserting an accelerator between the two hydrogens:")
	if err := ring.Insert(field.Accelerator, 0); err != nil {
		log.Fatalf("insert: %v", err)
	}
	fmt.Printf("now: %s\n", ring)

	fmt.Println("inserting a dark accelerator, which fuses anything:")
	if err := ring.Insert(field.DarkAccelerator, 1); err != nil {
		log.Fatalf("insert: %v", err)
	}
	fmt.Printf("now: %s\n", ring)

	fmt.Println("removing index 0:")
	if err := ring.Remove(0); err != nil {
		log.Fatalf("remove: %v", err)
	}
	fmt.Printf("final: %s (%d tokens)\n", ring, ring.Count())
}
