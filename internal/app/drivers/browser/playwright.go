package browser

import (
	"context"
	"fmt"
	"labbridge-service/internal/app/config"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/pkg/exceptions"
	"strings"
	"time"

	"github.com/goccy/go-json"
	pw "github.com/playwright-community/playwright-go"
)

// PlaywrightBrowser adapts a playwright browser process to the narrow
// contracts.Browser interface the engine is written against.
type PlaywrightBrowser struct {
	pw         *pw.Playwright
	browser    pw.Browser
	navTimeout time.Duration
}

func NewPlaywrightBrowser(driverConfig *config.DriverConfig) (contracts.Browser, error) {
	runner, err := pw.Run()
	if err != nil {
		return nil, exceptions.ErrBrowserLaunch(err)
	}

	launchOptions := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(driverConfig.Playwright.Headless),
	}
	if driverConfig.Playwright.SlowMoMs > 0 {
		launchOptions.SlowMo = pw.Float(float64(driverConfig.Playwright.SlowMoMs))
	}

	var browserType pw.BrowserType
	switch driverConfig.Playwright.BrowserName {
	case "firefox":
		browserType = runner.Firefox
	case "webkit":
		browserType = runner.WebKit
	default:
		browserType = runner.Chromium
	}

	instance, err := browserType.Launch(launchOptions)
	if err != nil {
		runner.Stop()
		return nil, exceptions.ErrBrowserLaunch(err)
	}

	return &PlaywrightBrowser{
		pw:         runner,
		browser:    instance,
		navTimeout: time.Duration(driverConfig.Playwright.NavigationTimeoutSeconds) * time.Second,
	}, nil
}

func (b *PlaywrightBrowser) NewPage(ctx context.Context, sessionState []byte) (contracts.Page, error) {
	contextOptions := pw.BrowserNewContextOptions{}
	if len(sessionState) > 0 {
		var storageState pw.OptionalStorageState
		if err := json.Unmarshal(sessionState, &storageState); err != nil {
			return nil, exceptions.ErrBrowserPage(err)
		}
		contextOptions.StorageState = &storageState
	}

	browserContext, err := b.browser.NewContext(contextOptions)
	if err != nil {
		return nil, exceptions.ErrBrowserPage(err)
	}

	page, err := browserContext.NewPage()
	if err != nil {
		browserContext.Close()
		return nil, exceptions.ErrBrowserPage(err)
	}

	return &playwrightPage{
		page:       page,
		browserCtx: browserContext,
		navTimeout: b.navTimeout,
	}, nil
}

func (b *PlaywrightBrowser) Close() error {
	if err := b.browser.Close(); err != nil {
		return err
	}
	return b.pw.Stop()
}

type playwrightPage struct {
	page       pw.Page
	browserCtx pw.BrowserContext
	navTimeout time.Duration
}

func (p *playwrightPage) Goto(ctx context.Context, url string) error {
	_, err := p.page.Goto(url, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateNetworkidle,
		Timeout:   pw.Float(float64(p.navTimeout.Milliseconds())),
	})
	if err != nil {
		return exceptions.ErrNavigationFailed(err, url)
	}
	return nil
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) Content(ctx context.Context) (string, error) {
	content, err := p.page.Content()
	if err != nil {
		return "", exceptions.ErrInteractionTimeout(err, "page content")
	}
	return content, nil
}

func (p *playwrightPage) Text(ctx context.Context) (string, error) {
	text, err := p.page.Locator("body").InnerText()
	if err != nil {
		return "", exceptions.ErrInteractionTimeout(err, "page text")
	}
	return text, nil
}

func (p *playwrightPage) Query(ctx context.Context, selector string) ([]contracts.Element, error) {
	locator := p.page.Locator(selector)
	count, err := locator.Count()
	if err != nil {
		return nil, exceptions.ErrInteractionTimeout(err, fmt.Sprintf("query %s", selector))
	}

	elements := make([]contracts.Element, 0, count)
	for i := 0; i < count; i++ {
		elements = append(elements, &playwrightElement{locator: locator.Nth(i)})
	}
	return elements, nil
}

func (p *playwrightPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (contracts.Element, error) {
	locator := p.page.Locator(selector).First()
	err := locator.WaitFor(pw.LocatorWaitForOptions{
		State:   pw.WaitForSelectorStateVisible,
		Timeout: pw.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return nil, exceptions.ErrInteractionTimeout(err, fmt.Sprintf("wait for %s", selector))
	}
	return &playwrightElement{locator: locator}, nil
}

func (p *playwrightPage) Screenshot(ctx context.Context) ([]byte, error) {
	data, err := p.page.Screenshot(pw.PageScreenshotOptions{
		FullPage: pw.Bool(true),
	})
	if err != nil {
		return nil, exceptions.ErrInteractionTimeout(err, "screenshot")
	}
	return data, nil
}

func (p *playwrightPage) ExportState(ctx context.Context) ([]byte, error) {
	storageState, err := p.browserCtx.StorageState()
	if err != nil {
		return nil, exceptions.ErrBrowserStateExport(err)
	}
	serialized, err := json.Marshal(storageState)
	if err != nil {
		return nil, exceptions.ErrBrowserStateExport(err)
	}
	return serialized, nil
}

func (p *playwrightPage) Close() error {
	if err := p.page.Close(); err != nil {
		return err
	}
	return p.browserCtx.Close()
}

type playwrightElement struct {
	locator pw.Locator
}

func (e *playwrightElement) Click(ctx context.Context) error {
	if err := e.locator.Click(); err != nil {
		return exceptions.ErrStaleElement(err, "click")
	}
	return nil
}

func (e *playwrightElement) Fill(ctx context.Context, value string) error {
	if err := e.locator.Fill(value); err != nil {
		return exceptions.ErrStaleElement(err, "fill")
	}
	return nil
}

func (e *playwrightElement) SelectOption(ctx context.Context, value string) error {
	_, err := e.locator.SelectOption(pw.SelectOptionValues{
		ValuesOrLabels: &[]string{value},
	})
	if err != nil {
		return exceptions.ErrStaleElement(err, "select option")
	}
	return nil
}

func (e *playwrightElement) Press(ctx context.Context, key string) error {
	if err := e.locator.Press(key); err != nil {
		return exceptions.ErrStaleElement(err, "press")
	}
	return nil
}

func (e *playwrightElement) Visible() bool {
	visible, err := e.locator.IsVisible()
	return err == nil && visible
}

func (e *playwrightElement) Enabled() bool {
	enabled, err := e.locator.IsEnabled()
	return err == nil && enabled
}

func (e *playwrightElement) TagName() string {
	result, err := e.locator.Evaluate("el => el.tagName", nil)
	if err != nil {
		return ""
	}
	tagName, ok := result.(string)
	if !ok {
		return ""
	}
	return strings.ToLower(tagName)
}

func (e *playwrightElement) InputType() string {
	return e.Attr("type")
}

func (e *playwrightElement) Attr(name string) string {
	value, err := e.locator.GetAttribute(name)
	if err != nil {
		return ""
	}
	return value
}

func (e *playwrightElement) Text() string {
	text, err := e.locator.TextContent()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
