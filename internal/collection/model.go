// Package collection converts between an in-memory collection and its
// directory tree, and reconstructs an OpenAPI document from such a tree.
package collection

import "github.com/kolah/brunoapi/internal/bru"

type ItemType string

const (
	ItemHTTPRequest    ItemType = "http-request"
	ItemGraphQLRequest ItemType = "graphql-request"
	ItemGRPCRequest    ItemType = "grpc-request"
	ItemFolder         ItemType = "folder"
)

// Collection is the tree written by Writer.
type Collection struct {
	Name string
	// Description feeds the docs of the default root metadata when Root is nil.
	Description  string
	Root         *bru.Root
	Environments []Environment
	Items        []Item
}

type Environment struct {
	Name      string
	Variables []bru.Variable
}

// Item is either a request (Request set) or a folder (Items, optionally Root).
type Item struct {
	Type    ItemType
	Name    string
	Request *bru.Request
	Root    *bru.Root
	Items   []Item
}

func (i Item) IsFolder() bool {
	return i.Type == ItemFolder
}

// RequestType maps the item type onto the request type stored in the file.
func (i Item) RequestType() bru.RequestType {
	switch i.Type {
	case ItemGraphQLRequest:
		return bru.TypeGraphQL
	case ItemGRPCRequest:
		return bru.TypeGRPC
	default:
		return bru.TypeHTTP
	}
}

// CountRequests returns the number of request items in items, recursively.
func CountRequests(items []Item) int {
	n := 0
	for _, it := range items {
		if it.IsFolder() {
			n += CountRequests(it.Items)
		} else {
			n++
		}
	}
	return n
}
