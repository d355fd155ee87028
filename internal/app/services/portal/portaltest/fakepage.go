// Package portaltest provides an in-memory contracts.Page used by the engine
// package tests, so they exercise the real resolver/navigator logic without a
// browser process.
package portaltest

import (
	"context"
	"fmt"
	"labbridge-service/internal/app/contracts"
	"strings"
	"sync"
	"time"
)

// FakeElement is a scriptable contracts.Element.
type FakeElement struct {
	Selector   string
	Tag        string
	Type       string
	Attributes map[string]string
	TextValue  string
	IsVisible  bool
	IsEnabled  bool

	FilledValue   string
	SelectedValue string
	Clicks        int
	PressedKeys   []string
	ClickErr      error
	FillErr       error
	OnClick       func()
}

func NewInput(selector, name string) *FakeElement {
	return &FakeElement{
		Selector:   selector,
		Tag:        "input",
		Type:       "text",
		Attributes: map[string]string{"name": name, "id": name},
		IsVisible:  true,
		IsEnabled:  true,
	}
}

func NewButton(selector, label string) *FakeElement {
	return &FakeElement{
		Selector:  selector,
		Tag:       "button",
		TextValue: label,
		IsVisible: true,
		IsEnabled: true,
	}
}

func (e *FakeElement) Click(ctx context.Context) error {
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.Clicks++
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

func (e *FakeElement) Fill(ctx context.Context, value string) error {
	if e.FillErr != nil {
		return e.FillErr
	}
	e.FilledValue = value
	return nil
}

func (e *FakeElement) SelectOption(ctx context.Context, value string) error {
	e.SelectedValue = value
	return nil
}

func (e *FakeElement) Press(ctx context.Context, key string) error {
	e.PressedKeys = append(e.PressedKeys, key)
	return nil
}

func (e *FakeElement) Visible() bool   { return e.IsVisible }
func (e *FakeElement) Enabled() bool   { return e.IsEnabled }
func (e *FakeElement) TagName() string { return e.Tag }
func (e *FakeElement) InputType() string {
	if e.Type != "" {
		return e.Type
	}
	return e.Attributes["type"]
}

func (e *FakeElement) Attr(name string) string {
	if e.Attributes == nil {
		return ""
	}
	return e.Attributes[name]
}

func (e *FakeElement) Text() string { return e.TextValue }

// FakePage maps selectors to elements. Kind selectors ("input", "select",
// "button") additionally match by tag so the heuristic scan works.
type FakePage struct {
	mu       sync.Mutex
	URLValue string
	PageText string
	Markup   string
	Elements map[string][]*FakeElement
	State    []byte
	GotoLog  []string
	QueryLog []string
	Shots    int
	GotoErr  error
	ShotErr  error
	Closed   bool
}

func NewFakePage() *FakePage {
	return &FakePage{Elements: map[string][]*FakeElement{}}
}

// Add registers an element under its own selector.
func (p *FakePage) Add(element *FakeElement) *FakePage {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Elements[element.Selector] = append(p.Elements[element.Selector], element)
	return p
}

// Remove drops all elements registered under selector.
func (p *FakePage) Remove(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.Elements, selector)
}

func (p *FakePage) Goto(ctx context.Context, url string) error {
	if p.GotoErr != nil {
		return p.GotoErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.URLValue = url
	p.GotoLog = append(p.GotoLog, url)
	return nil
}

func (p *FakePage) URL() string { return p.URLValue }

func (p *FakePage) Content(ctx context.Context) (string, error) { return p.Markup, nil }

func (p *FakePage) Text(ctx context.Context) (string, error) { return p.PageText, nil }

func (p *FakePage) Query(ctx context.Context, selector string) ([]contracts.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.QueryLog = append(p.QueryLog, selector)

	var matched []contracts.Element
	seen := map[*FakeElement]bool{}
	for _, part := range strings.Split(selector, ",") {
		part = strings.TrimSpace(part)
		for _, element := range p.Elements[part] {
			if !seen[element] {
				matched = append(matched, element)
				seen[element] = true
			}
		}
		// Bare tag selectors match every element of that tag.
		for _, elements := range p.Elements {
			for _, element := range elements {
				if element.Tag == part && !seen[element] {
					matched = append(matched, element)
					seen[element] = true
				}
			}
		}
	}
	return matched, nil
}

func (p *FakePage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (contracts.Element, error) {
	elements, _ := p.Query(ctx, selector)
	for _, element := range elements {
		if element.Visible() {
			return element, nil
		}
	}
	return nil, fmt.Errorf("timeout waiting for %s", selector)
}

func (p *FakePage) Screenshot(ctx context.Context) ([]byte, error) {
	if p.ShotErr != nil {
		return nil, p.ShotErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Shots++
	return []byte(fmt.Sprintf("png-%d", p.Shots)), nil
}

func (p *FakePage) ExportState(ctx context.Context) ([]byte, error) {
	if p.State != nil {
		return p.State, nil
	}
	return []byte(`{"cookies":[]}`), nil
}

func (p *FakePage) Close() error {
	p.Closed = true
	return nil
}
