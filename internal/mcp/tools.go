package mcp

import (
	"context"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetPRs = mcp.NewTool("get_prs",
	mcp.WithDescription("Retrieve personal records for a program. Returns heaviest set, estimated 1RM, and session volume records per exercise."),
	mcp.WithString("program_id", mcp.Required(), mcp.Description("Program identifier")),
	mcp.WithString("exercise_id", mcp.Description("Filter to a single exercise (e.g. bench_press). Omit for all exercises.")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Retrieve the full non-warmup set history for an exercise within a program, oldest first. Includes estimated total load for bodyweight exercises."),
	mcp.WithString("program_id", mcp.Required(), mcp.Description("Program identifier")),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise identifier (e.g. squat)")),
)

var toolGetSuggestion = mcp.NewTool("get_suggestion",
	mcp.WithDescription("Get the suggested weight and reps for the next session of an exercise, based on the last working set and the program's rep targets."),
	mcp.WithString("program_id", mcp.Required(), mcp.Description("Program identifier")),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise identifier")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List all known exercises with their aliases, bodyweight factors, and default increments."),
)

var toolGetRecentWorkouts = mcp.NewTool("get_last_workouts",
	mcp.WithDescription("Retrieve the most recent workouts for a program, newest first."),
	mcp.WithString("program_id", mcp.Required(), mcp.Description("Program identifier")),
	mcp.WithString("limit", mcp.Description("Maximum number of workouts to return. Defaults to 10.")),
)

// --- Tool handlers ---

func (h *handlers) getPRs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	programID, err := req.RequireString("program_id")
	if err != nil {
		return mcp.NewToolResultError("program_id parameter is required"), nil
	}

	exerciseID := req.GetString("exercise_id", "")

	var records any
	if exerciseID != "" {
		records, err = h.ds.GetPRs(ctx, programID, exerciseID)
	} else {
		records, err = h.ds.ListPRs(ctx, programID)
	}
	if err != nil {
		h.log.Error("mcp get_prs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	programID, err := req.RequireString("program_id")
	if err != nil {
		return mcp.NewToolResultError("program_id parameter is required"), nil
	}
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	rows, err := h.ds.ExerciseHistory(ctx, programID, exerciseID)
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSuggestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	programID, err := req.RequireString("program_id")
	if err != nil {
		return mcp.NewToolResultError("program_id parameter is required"), nil
	}
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	sug, err := h.ds.Suggestion(ctx, programID, exerciseID)
	if err != nil {
		h.log.Error("mcp get_suggestion", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if sug == nil {
		return mcp.NewToolResultText("no history for this exercise yet"), nil
	}

	result, err := mcp.NewToolResultJSON(sug)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.Exercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecentWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	programID, err := req.RequireString("program_id")
	if err != nil {
		return mcp.NewToolResultError("program_id parameter is required"), nil
	}

	limit := 10
	if v := req.GetString("limit", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return mcp.NewToolResultError("limit must be a positive integer"), nil
		}
		limit = n
	}

	workouts, err := h.ds.RecentWorkouts(ctx, programID, limit)
	if err != nil {
		h.log.Error("mcp get_last_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
