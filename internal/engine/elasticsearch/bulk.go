package elasticsearch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/utafrali/searchapp/internal/domain"
)

// esBulkItem is the per-action entry of a bulk response.
type esBulkItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

// esBulkResponse is the structure used to decode Elasticsearch bulk responses.
type esBulkResponse struct {
	Errors bool                    `json:"errors"`
	Items  []map[string]esBulkItem `json:"items"`
}

// encodeBulkCreate writes one create action and one document line per product.
func encodeBulkCreate(indexName string, products []domain.Product) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for i := range products {
		action := map[string]interface{}{
			"create": map[string]interface{}{
				"_index": indexName,
				"_id":    products[i].ID,
			},
		}
		if err := enc.Encode(action); err != nil {
			return nil, fmt.Errorf("encode action for %s: %w", products[i].ID, err)
		}
		if err := enc.Encode(products[i].Document()); err != nil {
			return nil, fmt.Errorf("encode document for %s: %w", products[i].ID, err)
		}
	}
	return &buf, nil
}

// toBulkResult counts successful items and collects the failed ones.
func (r *esBulkResponse) toBulkResult() *domain.BulkResult {
	result := &domain.BulkResult{}
	for _, entry := range r.Items {
		item, ok := entry["create"]
		if !ok {
			continue
		}
		if item.Error == nil && item.Status >= 200 && item.Status < 300 {
			result.Indexed++
			continue
		}
		errType, reason := "unknown", fmt.Sprintf("status %d", item.Status)
		if item.Error != nil {
			errType, reason = item.Error.Type, item.Error.Reason
		}
		result.Fail(item.ID, errType, reason)
	}
	return result
}
