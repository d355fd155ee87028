package resolver

// ElementKind narrows which interactive elements a heuristic scan enumerates.
type ElementKind string

const (
	KindInput    ElementKind = "input"
	KindSelect   ElementKind = "select"
	KindCheckbox ElementKind = "checkbox"
	KindButton   ElementKind = "button"
)

// FieldSpec is one semantic field of the portal workflow. Selectors are tried
// in listed order; Required decides whether an unresolved field fails the
// stage or is logged and skipped.
type FieldSpec struct {
	Name      string
	Kind      ElementKind
	Selectors []string
	Required  bool
}

// Catalog is the per-portal table mapping semantic field names to locator
// candidates. The markup of these portals drifts between releases, so every
// entry carries fallbacks and the resolver degrades to scanning when all of
// them miss.
type Catalog struct {
	Portal string
	Fields map[string]FieldSpec
}

func (c *Catalog) Spec(fieldName string) (FieldSpec, bool) {
	spec, ok := c.Fields[fieldName]
	return spec, ok
}

// Required reports the per-field configuration, defaulting to required for
// fields the catalog does not know about.
func (c *Catalog) Required(fieldName string) bool {
	spec, ok := c.Fields[fieldName]
	if !ok {
		return true
	}
	return spec.Required
}

// DefaultCatalog covers the order-entry workflow shared by this family of lab
// portals. Selector lists were collected from live markup.
func DefaultCatalog(portal string) *Catalog {
	fields := []FieldSpec{
		{Name: "login.username", Kind: KindInput, Required: true, Selectors: []string{"#username", "input[name='username']", "input[name='userId']"}},
		{Name: "login.continue", Kind: KindButton, Required: false, Selectors: []string{"#continueBtn", "button[name='continue']", "input[value='Continue']"}},
		{Name: "login.password", Kind: KindInput, Required: true, Selectors: []string{"#password", "input[name='password']", "input[type='password']"}},
		{Name: "login.submit", Kind: KindButton, Required: true, Selectors: []string{"#loginBtn", "button[type='submit']", "input[value='Sign In']"}},

		{Name: "nav.orderEntry", Kind: KindButton, Required: true, Selectors: []string{"#newOrderLink", "a[href*='order/new']", "button[name='newOrder']"}},

		{Name: "patient.search.lastName", Kind: KindInput, Required: true, Selectors: []string{"#searchLastName", "input[name='searchLastName']"}},
		{Name: "patient.search.dob", Kind: KindInput, Required: true, Selectors: []string{"#searchDob", "input[name='searchDob']"}},
		{Name: "patient.search.submit", Kind: KindButton, Required: true, Selectors: []string{"#patientSearchBtn", "button[name='searchPatients']"}},
		{Name: "patient.search.result", Kind: KindButton, Required: false, Selectors: []string{".patient-result-row", "tr[data-patient-id]"}},
		{Name: "patient.create", Kind: KindButton, Required: true, Selectors: []string{"#createPatientBtn", "button[name='createPatient']"}},

		{Name: "patient.firstName", Kind: KindInput, Required: true, Selectors: []string{"#firstName", "input[name='firstName']"}},
		{Name: "patient.lastName", Kind: KindInput, Required: true, Selectors: []string{"#lastName", "input[name='lastName']"}},
		{Name: "patient.dob", Kind: KindInput, Required: true, Selectors: []string{"#dateOfBirth", "input[name='dob']"}},
		{Name: "patient.sex", Kind: KindSelect, Required: true, Selectors: []string{"#sex", "select[name='sex']", "select[name='gender']"}},
		{Name: "patient.phone", Kind: KindInput, Required: false, Selectors: []string{"#phone", "input[name='phone']", "input[type='tel']"}},
		{Name: "patient.address.line1", Kind: KindInput, Required: true, Selectors: []string{"#addressLine1", "input[name='address1']"}},
		{Name: "patient.address.line2", Kind: KindInput, Required: false, Selectors: []string{"#addressLine2", "input[name='address2']"}},
		{Name: "patient.address.city", Kind: KindInput, Required: true, Selectors: []string{"#city", "input[name='city']"}},
		{Name: "patient.address.state", Kind: KindSelect, Required: true, Selectors: []string{"#state", "select[name='state']"}},
		{Name: "patient.address.zip", Kind: KindInput, Required: true, Selectors: []string{"#zip", "input[name='zip']", "input[name='zipCode']"}},
		{Name: "patient.payer", Kind: KindSelect, Required: false, Selectors: []string{"#payer", "select[name='payer']", "select[name='insuranceCarrier']"}},
		{Name: "patient.memberId", Kind: KindInput, Required: false, Selectors: []string{"#memberId", "input[name='memberId']", "input[name='policyNumber']"}},
		{Name: "patient.billMethod", Kind: KindSelect, Required: true, Selectors: []string{"#billMethod", "select[name='billMethod']", "select[name='billType']"}},
		{Name: "patient.save", Kind: KindButton, Required: true, Selectors: []string{"#savePatientBtn", "button[name='savePatient']"}},
		{Name: "patient.addressConfirm", Kind: KindButton, Required: false, Selectors: []string{"#useEnteredAddress", "button[name='confirmAddress']"}},

		{Name: "order.provider", Kind: KindSelect, Required: true, Selectors: []string{"#orderingProvider", "select[name='provider']"}},
		{Name: "order.provider.npiSearch", Kind: KindInput, Required: false, Selectors: []string{"#npiSearch", "input[name='npi']"}},
		{Name: "order.provider.npiSearchSubmit", Kind: KindButton, Required: false, Selectors: []string{"#npiSearchBtn", "button[name='searchNpi']"}},
		{Name: "order.testSearch", Kind: KindInput, Required: true, Selectors: []string{"#testSearch", "input[name='testSearch']"}},
		{Name: "order.testSearch.result", Kind: KindButton, Required: true, Selectors: []string{".test-result-row", "li[data-test-code]"}},
		{Name: "order.dxSearch", Kind: KindInput, Required: true, Selectors: []string{"#dxSearch", "input[name='diagnosisSearch']"}},
		{Name: "order.dxSearch.result", Kind: KindButton, Required: true, Selectors: []string{".dx-result-row", "li[data-dx-code]"}},
		{Name: "order.initials", Kind: KindInput, Required: false, Selectors: []string{"#collectorInitials", "input[name='initials']"}},
		{Name: "order.date", Kind: KindInput, Required: true, Selectors: []string{"#orderDate", "input[name='orderDate']"}},
		{Name: "order.validate", Kind: KindButton, Required: true, Selectors: []string{"#validateOrderBtn", "button[name='validateOrder']"}},
		{Name: "order.submit", Kind: KindButton, Required: true, Selectors: []string{"#submitOrderBtn", "button[name='submitOrder']"}},
	}

	catalog := &Catalog{Portal: portal, Fields: make(map[string]FieldSpec, len(fields))}
	for _, spec := range fields {
		catalog.Fields[spec.Name] = spec
	}
	return catalog
}
