package elasticsearch

// tieBreaker weights the non-best clause scores in the dis_max query.
const tieBreaker = 0.7

// resultFields are the only _source fields a search needs.
var resultFields = []string{"image", "name", "description"}

// buildSearchQuery constructs the query DSL: the term must match all of its
// tokens (with AUTO fuzziness) in either analyzed field, and the best field
// decides the score.
func buildSearchQuery(term string, size int) map[string]interface{} {
	return map[string]interface{}{
		"size":    size,
		"_source": resultFields,
		"query": map[string]interface{}{
			"dis_max": map[string]interface{}{
				"queries": []interface{}{
					matchClause(NameField, term),
					matchClause(DescriptionField, term),
				},
				"tie_breaker": tieBreaker,
			},
		},
	}
}

func matchClause(field, term string) map[string]interface{} {
	return map[string]interface{}{
		"match": map[string]interface{}{
			field: map[string]interface{}{
				"query":     term,
				"fuzziness": "AUTO",
				"operator":  "and",
			},
		},
	}
}
