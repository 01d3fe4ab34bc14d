package orchestrator

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"workbench/pkg/proto"
)

// TaskSpec is one entry of the structurer's JSON array.
type TaskSpec struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	FilePath    string `json:"filePath,omitempty"`
}

// TaskParse is the tagged result of structuring-output parsing. Parsing
// never fails: an unusable response degrades to Fallback with the raw
// text preserved verbatim.
type TaskParse struct {
	Specs    []TaskSpec
	Fallback bool
	Raw      string
}

// ParseTaskList extracts the task array from a structuring response. The
// extraction is greedy: the span from the first '[' to the last ']' is
// taken, so a response wrapping the array in prose still parses the
// array. Malformed JSON gets one repair attempt before falling back.
func ParseTaskList(response string) TaskParse {
	first := strings.Index(response, "[")
	last := strings.LastIndex(response, "]")
	if first == -1 || last <= first {
		return TaskParse{Fallback: true, Raw: response}
	}

	candidate := response[first : last+1]
	var specs []TaskSpec
	if err := json.Unmarshal([]byte(candidate), &specs); err == nil {
		return TaskParse{Specs: specs, Raw: response}
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return TaskParse{Fallback: true, Raw: response}
	}
	if err := json.Unmarshal([]byte(repaired), &specs); err != nil {
		return TaskParse{Fallback: true, Raw: response}
	}
	return TaskParse{Specs: specs, Raw: response}
}

// Materialize converts a parse result into tasks. The fallback variant
// yields exactly one high-priority task carrying the raw response as its
// description.
func (p TaskParse) Materialize() []*proto.Task {
	if p.Fallback {
		return []*proto.Task{
			proto.NewTask("Implement goal", p.Raw, proto.PriorityHigh, ""),
		}
	}
	tasks := make([]*proto.Task, 0, len(p.Specs))
	for _, spec := range p.Specs {
		tasks = append(tasks, proto.NewTask(spec.Title, spec.Description, proto.ParsePriority(spec.Priority), spec.FilePath))
	}
	return tasks
}
