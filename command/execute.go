package command

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/liuxd6825/iedriver/common"
	"github.com/liuxd6825/iedriver/log"
)

// ExecuteScript runs a function body in the current document.
type ExecuteScript struct {
	logger *log.Logger
}

// NewExecuteScript returns the execute command.
func NewExecuteScript(logger *log.Logger) *ExecuteScript {
	return &ExecuteScript{logger: logger}
}

// ExecuteInternal implements Command. Serialized element references in
// args are replaced with the registered elements.
func (e *ExecuteScript) ExecuteInternal(ctx context.Context, sess Session, _ Parameters, params gjson.Result, resp *Response) {
	body, ok := requireString(params, "script", resp)
	if !ok {
		return
	}
	rawArgs := params.Get("args")
	if rawArgs.Exists() && !rawArgs.IsArray() {
		resp.SetErrorResponse(common.UnhandledError, "Malformed parameters: args must be an array")
		return
	}

	browser, err := sess.GetCurrentBrowser()
	if err != nil {
		resp.SetErrorFromError(err)
		return
	}
	doc, err := browser.GetDocument()
	if err != nil {
		resp.SetErrorFromError(err)
		return
	}

	script := common.NewScript(doc, common.WrapFunctionBody(body), e.logger)
	for _, a := range rawArgs.Array() {
		arg, err := sess.Elements().ResolveArgument(a.Value())
		if err != nil {
			resp.SetErrorFromError(err)
			return
		}
		script.AddArgument(arg)
	}

	result, err := script.Execute(ctx)
	if err != nil {
		resp.SetErrorFromError(err)
		return
	}
	resp.SetSuccessResponse(result.Convert(sess.Elements()))
}
