package command

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/liuxd6825/iedriver/common"
)

// FindElement finds the first element matching a locator, optionally under
// the element named by the "id" path parameter.
type FindElement struct {
	child bool
}

// FindElements finds every element matching a locator, optionally under
// the element named by the "id" path parameter.
type FindElements struct {
	child bool
}

// NewFindElement returns the document-level single element search.
func NewFindElement() *FindElement { return &FindElement{} }

// NewFindChildElement returns the single element search under a parent.
func NewFindChildElement() *FindElement { return &FindElement{child: true} }

// NewFindElements returns the document-level multiple element search.
func NewFindElements() *FindElements { return &FindElements{} }

// NewFindChildElements returns the multiple element search under a parent.
func NewFindChildElements() *FindElements { return &FindElements{child: true} }

func locate(sess Session, child bool, locator Parameters, params gjson.Result, resp *Response) (*common.ElementHandle, common.Locator, bool) {
	using, ok := requireString(params, "using", resp)
	if !ok {
		return nil, common.Locator{}, false
	}
	value, ok := requireString(params, "value", resp)
	if !ok {
		return nil, common.Locator{}, false
	}
	loc, err := common.NewLocator(using, value)
	if err != nil {
		resp.SetErrorResponse(common.UnhandledError, err.Error())
		return nil, common.Locator{}, false
	}
	if !child {
		return nil, loc, true
	}

	id, ok := locator["id"]
	if !ok {
		resp.SetErrorResponse(common.UnhandledError, "Missing parameter in URL: id")
		return nil, common.Locator{}, false
	}
	parent, err := sess.Elements().Get(id)
	if err != nil {
		resp.SetErrorFromError(err)
		return nil, common.Locator{}, false
	}
	return parent, loc, true
}

// ExecuteInternal implements Command.
func (f *FindElement) ExecuteInternal(ctx context.Context, sess Session, locator Parameters, params gjson.Result, resp *Response) {
	parent, loc, ok := locate(sess, f.child, locator, params, resp)
	if !ok {
		return
	}
	ref, err := sess.Finder().FindElement(ctx, sess, parent, loc)
	if err != nil {
		resp.SetErrorFromError(err)
		return
	}
	resp.SetSuccessResponse(ref)
}

// ExecuteInternal implements Command.
func (f *FindElements) ExecuteInternal(ctx context.Context, sess Session, locator Parameters, params gjson.Result, resp *Response) {
	parent, loc, ok := locate(sess, f.child, locator, params, resp)
	if !ok {
		return
	}
	found, err := sess.Finder().FindElements(ctx, sess, parent, loc)
	if err != nil {
		resp.SetErrorFromError(err)
		return
	}
	resp.SetSuccessResponse(found)
}
