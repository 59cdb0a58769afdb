package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listToolDef = mcp.NewTool("meeting_list",
	mcp.WithDescription("List saved meetings, most recent first. Returns summaries without transcript text."),
	mcp.WithString("query", mcp.Description("Case-insensitive filter on title, participants and transcript")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Number of meetings to skip")),
)

var getToolDef = mcp.NewTool("meeting_get",
	mcp.WithDescription("Fetch one saved meeting by id, including transcript and summary."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Meeting id")),
	mcp.WithBoolean("include_transcript", mcp.Description("Include transcript text (default true)")),
)

var deleteToolDef = mcp.NewTool("meeting_delete",
	mcp.WithDescription("Delete a saved meeting by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Meeting id")),
)

var insightsToolDef = mcp.NewTool("meeting_insights",
	mcp.WithDescription("Word counts, speaking pace and recommendations for one meeting."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Meeting id")),
)

var statsToolDef = mcp.NewTool("meeting_stats",
	mcp.WithDescription("Totals and averages across all saved meetings."),
)

var summarizeToolDef = mcp.NewTool("meeting_summarize",
	mcp.WithDescription("Recompute the summary of a saved meeting from its transcript. Nothing is saved."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Meeting id")),
)

var exportToolDef = mcp.NewTool("meeting_export",
	mcp.WithDescription("Export saved meetings to a JSONL file in the exports directory."),
	mcp.WithString("path", mcp.Description("Target .jsonl file directly inside the exports directory (default: generated name)")),
	mcp.WithString("query", mcp.Description("Only export meetings matching this filter")),
)

var importToolDef = mcp.NewTool("meeting_import",
	mcp.WithDescription("Import meetings from a JSONL export file in the exports directory."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .jsonl file directly inside the exports directory")),
	mcp.WithString("mode", mcp.Description("merge (default) adds unknown ids; replace swaps the whole collection"), mcp.Enum("merge", "replace")),
)
