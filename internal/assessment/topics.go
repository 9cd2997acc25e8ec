// Package assessment drives adaptive diagnostic quizzes. The orchestrator
// is stateless between calls: it sends the transcript it is given to the
// generation gateway, folds the markers parsed from the reply into a
// per-turn delta, and hands both back to the caller. The caller owns the
// selecting/quizzing/results lifecycle and accumulates scores across turns.
package assessment

import "strings"

// Topic is one assessable knowledge area with its declared subtopics —
// the fixed units of scoring granularity for the interview.
type Topic struct {
	Label     string
	Subtopics []string
}

// DefaultTopics is the built-in diagnostic catalogue, oriented at the
// data-engineering career track.
var DefaultTopics = []Topic{
	{
		Label:     "SQL",
		Subtopics: []string{"JOINs", "Window Functions", "CTEs", "Indexes", "Query Optimisation"},
	},
	{
		Label:     "Microsoft Fabric",
		Subtopics: []string{"Lakehouses", "Pipelines", "Dataflows Gen2", "OneLake", "Semantic Models"},
	},
	{
		Label:     "Power BI / DAX",
		Subtopics: []string{"measures", "CALCULATE", "filter context", "time intelligence"},
	},
	{
		Label:     "Python Data",
		Subtopics: []string{"Pandas", "Polars", "generators", "type hints"},
	},
	{
		Label:     "Azure / Cloud",
		Subtopics: []string{"ADF", "Synapse", "Blob Storage", "RBAC", "Key Vault"},
	},
	{
		Label:     "Databricks",
		Subtopics: []string{"Delta Lake", "Spark", "Unity Catalog", "Medallion Architecture"},
	},
	{
		Label:     "ETL / Data Engineering",
		Subtopics: []string{"SCD types", "idempotency", "schema evolution"},
	},
}

// TopicByLabel returns the catalogue topic with the given label,
// matched case-insensitively.
func TopicByLabel(label string) (Topic, bool) {
	for _, t := range DefaultTopics {
		if strings.EqualFold(t.Label, label) {
			return t, true
		}
	}
	return Topic{}, false
}
