// Package sitegraph defines the graph document the viewer lays out: a map of
// node ids to titled nodes carrying ordered outbound links.
package sitegraph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/sitegraph/internal/apperr"
)

// Link is an outbound edge descriptor. Link may name a node that is not in
// the document; such edges are ignored by every consumer.
type Link struct {
	Link        string `json:"link"`
	DisplayText string `json:"displayText,omitempty"`
}

// Validate validates the link descriptor.
func (l Link) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Link, validation.Required),
	)
}

// Node is one entry of the document.
type Node struct {
	Title string `json:"title,omitempty"`
	Links []Link `json:"links"`
}

// Validate validates the node and each of its links.
func (n Node) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Links, validation.NotNil),
	)
}

// Document is the graph document: {"nodes": {id: {title?, links: [...]}}}.
type Document struct {
	Nodes map[string]Node `json:"nodes"`
}

// Validate validates the document structure. Dangling link targets are not
// validation errors.
func (d *Document) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Nodes, validation.NotNil, validation.By(nonEmptyKeys)),
	)
}

func nonEmptyKeys(value interface{}) error {
	nodes, _ := value.(map[string]Node)
	for id := range nodes {
		if id == "" {
			return fmt.Errorf("node id must not be empty")
		}
	}
	return nil
}

// Decode reads a JSON graph document and validates it.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", apperr.ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidDocument, err)
	}
	return &doc, nil
}

// Checksum returns the hex-encoded SHA-256 digest of the canonical JSON
// encoding. encoding/json sorts map keys, so equal documents hash equally.
func (d *Document) Checksum() string {
	data, err := json.Marshal(d)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
