// Package petclinic provides top-level documentation for the petclinic-genai
// module, the chat assistant of the Spring Petclinic microservices.
//
// The module is organized as subpackages:
//
//	clinic      domain model shared by the service clients
//	customers   owners and pets client, vets and visits clients alongside
//	discovery   logical service name resolution (static or Redis backed)
//	genai       the assistant's tools, data provider and vet indexer
//	agent/core  the tool-calling chat loop
//	server/http the /chatclient and tool endpoints
//
// Importers depend on the subpackages directly, for example:
//
//	import (
//	  "github.com/KamdynS/petclinic-genai/visits"
//	  "github.com/KamdynS/petclinic-genai/genai"
//	)
package petclinic
