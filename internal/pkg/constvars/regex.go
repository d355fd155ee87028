package constvars

const (
	RegexPhoneNumberGeneral = `^\+[1-9]\d{9,14}$`
	RegexDateYYYYMMDD       = `^\d{4}-\d{2}-\d{2}$`
	RegexLabTestCode        = `^[A-Z0-9]{2,10}$`
	RegexICD10Code          = `^[A-TV-Z][0-9][0-9AB](\.[0-9A-TV-Z]{1,4})?$`
	RegexNPI                = `^\d{10}$`
	RegexZIPCode            = `^\d{5}(-\d{4})?$`
)
