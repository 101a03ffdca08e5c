package resource

import (
	"encoding/json"
	"fmt"
)

// attachmentCodec is the single boundary where attachment-list fields change
// shape: records travel with the field as a JSON string on writes and are
// surfaced with it as an array on reads. Only resources registered with
// attachment fields pass through it; everything else flows untouched.
type attachmentCodec struct {
	// fields maps resource name to the record fields holding attachment lists.
	fields map[string][]string
}

func newAttachmentCodec() *attachmentCodec {
	return &attachmentCodec{fields: map[string][]string{}}
}

// register marks a field of a resource as an attachment list.
func (c *attachmentCodec) register(resourceName, field string) {
	c.fields[resourceName] = append(c.fields[resourceName], field)
}

// encodeForWrite flattens attachment arrays into their string form before a
// record is sent. The record is modified in place.
func (c *attachmentCodec) encodeForWrite(resourceName string, record map[string]any) error {
	for _, field := range c.fields[resourceName] {
		value, ok := record[field]
		if !ok || value == nil {
			continue
		}
		if _, isString := value.(string); isString {
			continue
		}
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s.%s: %w", resourceName, field, err)
		}
		record[field] = string(data)
	}
	return nil
}

// decodeForRead restores attachment arrays from their string form on every
// record coming back from the server, whatever operation produced it.
func (c *attachmentCodec) decodeForRead(resourceName string, record map[string]any) error {
	for _, field := range c.fields[resourceName] {
		value, ok := record[field]
		if !ok || value == nil {
			record[field] = []any{}
			continue
		}

		stored, isString := value.(string)
		if !isString {
			continue
		}
		if stored == "" {
			record[field] = []any{}
			continue
		}

		var list []any
		if err := json.Unmarshal([]byte(stored), &list); err != nil {
			return fmt.Errorf("decode %s.%s: %w", resourceName, field, err)
		}
		if list == nil {
			list = []any{}
		}
		record[field] = list
	}
	return nil
}
