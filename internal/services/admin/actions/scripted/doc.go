// Package scripted loads bulk actions written in Lua.
//
// A script file evaluates to a table:
//
//	return {
//	  name = "archive_drafts",
//	  description = "Archive selected drafts",
//	  permissions = { "edit" },
//	  run = function(records)
//	    return { changes = { status = "archived" }, message = "Archived.", level = "success" }
//	  end,
//	}
//
// run receives an array of record tables (id plus string fields). Its result
// may carry changes applied to the records, an ids array restricting which
// records the changes touch, and a message queued for the operator.
//
// Evaluation stops when the request context ends or after Script.StepLimit
// VM instructions.
package scripted
