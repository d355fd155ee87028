package requests

type CreateOrder struct {
	CorrelationID string             `json:"correlation_id" validate:"required,max=64"`
	Portal        string             `json:"portal" validate:"required"`
	Patient       CreateOrderPatient `json:"patient" validate:"required"`
	Tests         []OrderTest        `json:"tests" validate:"required,min=1,dive"`
	Diagnoses     []OrderDiagnosis   `json:"diagnoses" validate:"required,min=1,dive"`
	Provider      OrderProvider      `json:"provider" validate:"required"`
	Preview       bool               `json:"preview"`
}

type CreateOrderPatient struct {
	FirstName     string             `json:"first_name" validate:"required,max=64"`
	LastName      string             `json:"last_name" validate:"required,max=64"`
	DateOfBirth   string             `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Sex           string             `json:"sex" validate:"required,oneof=M F U"`
	Phone         string             `json:"phone" validate:"required,phone_number"`
	Address       CreateOrderAddress `json:"address" validate:"required"`
	PayerCode     string             `json:"payer_code" validate:"omitempty,max=16"`
	PayerMemberID string             `json:"payer_member_id" validate:"omitempty,max=32"`
	BillMethod    string             `json:"bill_method" validate:"required,oneof=insurance client patient"`
}

type CreateOrderAddress struct {
	Line1 string `json:"line1" validate:"required,max=128"`
	Line2 string `json:"line2" validate:"omitempty,max=128"`
	City  string `json:"city" validate:"required,max=64"`
	State string `json:"state" validate:"required,len=2"`
	Zip   string `json:"zip" validate:"required,max=10"`
}

type OrderTest struct {
	Code    string `json:"code" validate:"required,test_code"`
	Display string `json:"display" validate:"required,max=128"`
}

type OrderDiagnosis struct {
	Code    string `json:"code" validate:"required,dx_code"`
	Display string `json:"display" validate:"required,max=128"`
}

type OrderProvider struct {
	FirstName string `json:"first_name" validate:"required,max=64"`
	LastName  string `json:"last_name" validate:"required,max=64"`
	NPI       string `json:"npi" validate:"required,npi"`
}

type ConfirmPreview struct {
	PreviewToken string `json:"preview_token" validate:"required"`
}

type RejectPreview struct {
	PreviewToken string `json:"preview_token" validate:"required"`
	Reason       string `json:"reason" validate:"required,max=512"`
}
