package elasticsearch

// Analyzer and field names of the product index. The name sub-field uses the
// custom analyzer (which also drops "made") while the description sub-field
// uses the stock english analyzer.
const (
	CustomAnalyzer   = "custom_english_analyzer"
	NameField        = "name.english_analyzed"
	DescriptionField = "description.english_analyzed"
)

// buildIndexMapping returns the settings and mappings used when the index is
// recreated.
func buildIndexMapping() string {
	return `{
  "settings": {
    "analysis": {
      "analyzer": {
        "` + CustomAnalyzer + `": {
          "type": "english",
          "stopwords": ["made", "_english_"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "name": {
        "type": "text",
        "fields": {
          "english_analyzed": {
            "type": "text",
            "analyzer": "` + CustomAnalyzer + `"
          }
        }
      },
      "description": {
        "type": "text",
        "fields": {
          "english_analyzed": {
            "type": "text",
            "analyzer": "english"
          }
        }
      },
      "image": {
        "type": "keyword",
        "index": false
      },
      "taxonomy": {
        "type": "keyword"
      },
      "price": {
        "type": "float"
      }
    }
  }
}`
}
