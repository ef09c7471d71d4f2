// internal/store/search.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"churn-analytics/internal/common/errors"
	"churn-analytics/internal/common/logger"
	"churn-analytics/internal/models"
)

const searchResultLimit = 50

// SearchQuery filters a customer search. ChurnStatus accepts
// "churned", "active" or empty.
type SearchQuery struct {
	Term        string `json:"searchTerm"`
	RiskLevel   string `json:"riskLevel,omitempty"`
	ChurnStatus string `json:"churnStatus,omitempty"`
}

// CustomerSearchIndex keeps a secondary Elasticsearch index of the
// customer collection for free-text lookup by customer ID. Postgres
// stays the source of truth; the index is rebuilt after every load.
type CustomerSearchIndex struct {
	client *elasticsearch.Client
	index  string
	log    logger.Logger
}

func NewCustomerSearchIndex(client *elasticsearch.Client, index string, log logger.Logger) *CustomerSearchIndex {
	return &CustomerSearchIndex{client: client, index: index, log: log}
}

// Reindex replaces the index contents with the given customers.
func (s *CustomerSearchIndex) Reindex(ctx context.Context, customers []models.Customer) error {
	if err := s.clear(ctx); err != nil {
		return err
	}
	if len(customers) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, customer := range customers {
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_id": customer.CustomerID},
		}
		metaLine, _ := json.Marshal(meta)
		docLine, _ := json.Marshal(customer)
		buf.Write(metaLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}

	res, err := s.client.Bulk(bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithIndex(s.index),
		s.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return errors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.NewSearchQueryFailedError(fmt.Errorf("bulk index: %s", res.String()))
	}

	s.log.Info("Search index rebuilt", map[string]interface{}{
		"index": s.index,
		"count": len(customers),
	})
	return nil
}

func (s *CustomerSearchIndex) clear(ctx context.Context) error {
	body, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
	})

	req := esapi.DeleteByQueryRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return errors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()
	// A missing index is fine, the bulk call creates it
	if res.IsError() && res.StatusCode != 404 {
		return errors.NewSearchQueryFailedError(fmt.Errorf("clear index: %s", res.String()))
	}
	return nil
}

// Search runs a prefix match on customer IDs with optional risk and
// churn filters, capped at 50 hits.
func (s *CustomerSearchIndex) Search(ctx context.Context, query SearchQuery) ([]models.Customer, error) {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if query.Term != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"match_phrase_prefix": map[string]interface{}{
				"customerId": query.Term,
			},
		})
	}
	if query.RiskLevel != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"riskLevel.keyword": query.RiskLevel},
		})
	}
	switch query.ChurnStatus {
	case "churned":
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"churn": true},
		})
	case "active":
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"churn": false},
		})
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   mustClauses,
				"filter": filterClauses,
			},
		},
		"size": searchResultLimit,
	}
	body, _ := json.Marshal(queryBody)

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(fmt.Errorf("search: %s", res.String()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.Customer `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryFailedError(err)
	}

	customers := make([]models.Customer, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		customers = append(customers, hit.Source)
	}
	return customers, nil
}
