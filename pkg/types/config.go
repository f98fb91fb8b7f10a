// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RankConfig holds settings for the rank stage.
type RankConfig struct {
	// Year1 is the path of the first-year score table (optional per student).
	Year1 string `json:"year1" yaml:"year1" mapstructure:"year1"`

	// Year2 is the path of the second-year score table. Every ranked student
	// must appear here.
	Year2 string `json:"year2" yaml:"year2" mapstructure:"year2"`

	// TieBreak orders records with equal composite scores (default stable).
	TieBreak TieBreak `json:"tie_break" yaml:"tie_break" mapstructure:"tie_break"`

	// ScoreHeader names the score column in CSV files that carry a header
	// row (e.g. "课程成绩"). Empty means "use the layout's score column".
	ScoreHeader string `json:"score_header" yaml:"score_header" mapstructure:"score_header"`
}

// OutputConfig holds the result sink file names. Empty names disable the
// corresponding file, except Full and Simple which default when empty.
type OutputConfig struct {
	// Dir is the directory all outputs are written to (default ".").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Full is the full ranking CSV (rank, id, year1, year2, composite, category).
	Full string `json:"full" yaml:"full" mapstructure:"full"`

	// Simple is the simplified ranking CSV (rank, id, composite).
	Simple string `json:"simple" yaml:"simple" mapstructure:"simple"`

	// JSON is the ranking keyed by student ID; empty disables it.
	JSON string `json:"json" yaml:"json" mapstructure:"json"`

	// YAML is the ranked sequence as YAML; empty disables it.
	YAML string `json:"yaml" yaml:"yaml" mapstructure:"yaml"`
}

// CompareMode selects how two scores for the same student are compared.
type CompareMode string

const (
	// CompareAuto compares document pairs as text and everything else with
	// the tolerance.
	CompareAuto CompareMode = "auto"
	// CompareExact compares the raw score text.
	CompareExact CompareMode = "exact"
	// CompareTolerance compares numeric values with an absolute tolerance.
	CompareTolerance CompareMode = "tolerance"
)

// CompareConfig holds settings for the compare stage.
type CompareConfig struct {
	// Mode is auto, exact, or tolerance (default auto).
	Mode CompareMode `json:"mode" yaml:"mode" mapstructure:"mode"`

	// Tolerance is the maximum absolute difference treated as equal (default 0.001).
	Tolerance float64 `json:"tolerance" yaml:"tolerance" mapstructure:"tolerance"`

	// Limit is how many mismatches the report lists before summarizing (default 20).
	Limit int `json:"limit" yaml:"limit" mapstructure:"limit"`
}

// ConversionConfig holds settings for PDF and Word extraction.
type ConversionConfig struct {
	// CacheDir receives the Markdown produced from PDF and Word documents.
	CacheDir string `json:"cache_dir" yaml:"cache_dir" mapstructure:"cache_dir"`

	// Runtime is the preferred container runtime, docker or podman. Empty
	// picks whichever is available.
	Runtime string `json:"runtime" yaml:"runtime" mapstructure:"runtime"`

	// Image is the markitdown container image (default markitdown:latest).
	Image string `json:"image" yaml:"image" mapstructure:"image"`
}

// MetricsConfig holds settings for the Prometheus textfile written after a run.
type MetricsConfig struct {
	// File is the textfile collector path; empty disables metrics output.
	File string `json:"file" yaml:"file" mapstructure:"file"`

	// Namespace prefixes every metric name (default gradebook).
	Namespace string `json:"namespace" yaml:"namespace" mapstructure:"namespace"`

	// Labels are added to every metric, e.g. {cohort: "2023"}, so runs for
	// several cohorts can share one textfile directory.
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty" mapstructure:"labels"`
}

// LookupConfig holds settings for the lookup command.
type LookupConfig struct {
	// MinIDLength is the shortest student ID accepted (default 8).
	MinIDLength int `json:"min_id_length" yaml:"min_id_length" mapstructure:"min_id_length"`
}

// Config groups all stage configurations for the pipeline.
type Config struct {
	Credits    CreditWeights    `json:"credits" yaml:"credits" mapstructure:"credits"`
	Rank       RankConfig       `json:"rank" yaml:"rank" mapstructure:"rank"`
	Output     OutputConfig     `json:"output" yaml:"output" mapstructure:"output"`
	Compare    CompareConfig    `json:"compare" yaml:"compare" mapstructure:"compare"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Metrics    MetricsConfig    `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
	Lookup     LookupConfig     `json:"lookup" yaml:"lookup" mapstructure:"lookup"`
}
