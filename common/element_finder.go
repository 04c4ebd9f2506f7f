package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/liuxd6825/iedriver/atoms"
	"github.com/liuxd6825/iedriver/log"
)

// ElementFinder resolves locators by running the criteria and find atoms in
// the current document.
type ElementFinder struct {
	atoms  *atoms.Catalog
	logger *log.Logger
}

// NewElementFinder returns a finder using the given atom catalog.
func NewElementFinder(catalog *atoms.Catalog, logger *log.Logger) *ElementFinder {
	return &ElementFinder{atoms: catalog, logger: logger}
}

// FindElement returns the first element matching loc, searching under parent
// when it is not nil. Every failure to produce an element is reported as
// ErrNoSuchElement, except a parent from another document.
func (f *ElementFinder) FindElement(
	ctx context.Context, sess Session, parent *ElementHandle, loc Locator,
) (ElementReference, error) {
	f.logger.Debugf("ElementFinder:FindElement", "locator:%s parent:%t", loc, parent != nil)

	r, err := f.find(ctx, sess, atoms.FindElement, parent, loc)
	if err != nil {
		if errors.Is(err, ErrWrongDocument) || errors.Is(err, ErrNoSuchWindow) {
			return ElementReference{}, err
		}
		f.logger.Debugf("ElementFinder:FindElement", "locator:%s err:%v", loc, err)
		return ElementReference{}, fmt.Errorf("%s: %w", loc, ErrNoSuchElement)
	}
	if !r.IsElement() {
		return ElementReference{}, fmt.Errorf("%s: %w", loc, ErrNoSuchElement)
	}
	ref, _ := r.Convert(sess.Elements()).(ElementReference)
	return ref, nil
}

// FindElements returns every element matching loc in document order. No
// match is a successful empty list. A result that is not a list is
// ErrResultShape.
func (f *ElementFinder) FindElements(
	ctx context.Context, sess Session, parent *ElementHandle, loc Locator,
) ([]any, error) {
	f.logger.Debugf("ElementFinder:FindElements", "locator:%s parent:%t", loc, parent != nil)

	r, err := f.find(ctx, sess, atoms.FindElements, parent, loc)
	if err != nil {
		return nil, err
	}
	found, err := r.ConvertList(sess.Elements())
	if err != nil {
		return nil, fmt.Errorf("%s returned %s: %w", loc, r.Kind, err)
	}
	return found, nil
}

func (f *ElementFinder) find(
	ctx context.Context, sess Session, atom atoms.Name, parent *ElementHandle, loc Locator,
) (ExecutionResult, error) {
	browser, err := sess.GetCurrentBrowser()
	if err != nil {
		return ExecutionResult{}, err
	}
	doc, err := browser.GetDocument()
	if err != nil {
		return ExecutionResult{}, err
	}

	criteriaAtom, err := f.atoms.Get(atoms.Criteria)
	if err != nil {
		return ExecutionResult{}, err
	}
	criteria := NewScript(doc, WrapAtom(criteriaAtom), f.logger)
	criteria.name = "atom." + string(atoms.Criteria)
	criteria.AddArgument(loc.CriteriaKey())
	criteria.AddArgument(loc.Criteria)
	cr, err := criteria.Execute(ctx)
	if err != nil {
		return ExecutionResult{}, fmt.Errorf("building criteria for %s: %w", loc, err)
	}

	findAtom, err := f.atoms.Get(atom)
	if err != nil {
		return ExecutionResult{}, err
	}
	script := NewScript(doc, WrapAtom(findAtom), f.logger)
	script.name = "atom." + string(atom)
	script.AddArgument(cr.Raw())
	if parent != nil {
		script.AddArgument(parent)
	}
	return script.Execute(ctx)
}
