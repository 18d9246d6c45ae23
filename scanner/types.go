package scanner

// Occurrence is one located instance of the disallowed wall-clock call.
// Identity is the (Path, Line) pair; Text is the raw line as read.
type Occurrence struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Category is the usage-context bucket assigned to an Occurrence.
type Category string

const (
	TimestampConversion Category = "timestamp_conversion"
	DirectAssignment    Category = "direct_assignment"
	StructField         Category = "struct_field"
	FunctionCall        Category = "function_call"
	Other               Category = "other"
)

// Categories lists all buckets in classification precedence order.
var Categories = []Category{
	TimestampConversion,
	DirectAssignment,
	StructField,
	FunctionCall,
	Other,
}

// Display maps categories to human-readable labels for the report.
var Display = map[Category]string{
	TimestampConversion: "Timestamp conversion",
	DirectAssignment:    "Direct assignment",
	StructField:         "Struct field initializer",
	FunctionCall:        "Function call argument",
	Other:               "Other",
}
