package idgen_test

import (
	"fmt"
	"strings"

	"github.com/jimyag/proxmux/pkg/idgen"
)

func ExampleGenerator_GenerateRequestID() {
	gen := idgen.New()

	requestID, err := gen.GenerateRequestID()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if strings.HasPrefix(requestID, "req-") {
		fmt.Println("Request ID format is correct")
	}
	// Output: Request ID format is correct
}

func ExampleGenerateOwnerID() {
	a := idgen.GenerateOwnerID()
	b := idgen.GenerateOwnerID()

	fmt.Println(a != b)
	// Output: true
}
