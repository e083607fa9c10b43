package task

import "encoding/json"

const strictDirective = "Respond with a single JSON object and no surrounding prose.\n"

// renderPrompt marshals payload deterministically (sorted keys, via
// encoding/json's default map ordering) and prepends the strict-mode
// directive on retry. This is the only behavioral change strictMode makes,
// per spec §4.A.
func renderPrompt(payload map[string]any, strictMode bool) (string, error) {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	if strictMode {
		return strictDirective + string(body), nil
	}
	return string(body), nil
}

// envelope builds the common {task, jobSnapshot, responseContract, ...extra}
// shape every builder assembles before rendering.
func envelope(taskName string, ctx TaskContext, contract map[string]any, extra map[string]any) map[string]any {
	payload := map[string]any{
		"task":             taskName,
		"jobSnapshot":      ctx.Job,
		"responseContract": contract,
	}
	for k, v := range extra {
		payload[k] = v
	}
	return payload
}
