package inmemory

import "github.com/KamdynS/petclinic-genai/memory"

func memoryDoc(id string, vec ...float32) memory.Document {
	return memory.Document{ID: id, Content: id, Embedding: vec}
}
