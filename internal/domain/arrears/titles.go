package arrears

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Titles supplies the human-readable text of collection steps
type Titles interface {
	Title(action ActionType) string
	Description(action ActionType) string
}

type actionText struct {
	title       string
	description string
}

var englishText = map[ActionType]actionText{
	ActionLegalCollection:     {"Legal collection", "Refer the account to legal collection"},
	ActionVehicleRepossession: {"Vehicle repossession", "Recover the rented vehicle from the customer"},
	ActionFinalNotice:         {"Final notice", "Send a final payment notice before escalation"},
	ActionContactCustomer:     {"Contact customer", "Call the customer to arrange payment"},
}

var arabicText = map[ActionType]actionText{
	ActionLegalCollection:     {"التحصيل القانوني", "إحالة الحساب إلى التحصيل القانوني"},
	ActionVehicleRepossession: {"استرداد المركبة", "استرداد المركبة المؤجرة من العميل"},
	ActionFinalNotice:         {"إنذار نهائي", "إرسال إنذار سداد نهائي قبل التصعيد"},
	ActionContactCustomer:     {"التواصل مع العميل", "الاتصال بالعميل لترتيب السداد"},
}

// EnglishTitles returns the built-in English text
type EnglishTitles struct{}

// Title implements Titles
func (EnglishTitles) Title(action ActionType) string {
	if t, ok := englishText[action]; ok {
		return t.title
	}
	return string(action)
}

// Description implements Titles
func (EnglishTitles) Description(action ActionType) string {
	return englishText[action].description
}

// CatalogTitles looks titles up in a message catalog keyed by the English
// text. Languages without a translation get English.
type CatalogTitles struct {
	printer *message.Printer
}

// NewCatalogTitles builds the English and Arabic catalog and binds a
// printer for lang
func NewCatalogTitles(lang language.Tag) (*CatalogTitles, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	for action, en := range englishText {
		ar := arabicText[action]
		for _, entry := range []struct {
			tag      language.Tag
			key, msg string
		}{
			{language.English, en.title, en.title},
			{language.English, en.description, en.description},
			{language.Arabic, en.title, ar.title},
			{language.Arabic, en.description, ar.description},
		} {
			if err := b.SetString(entry.tag, entry.key, entry.msg); err != nil {
				return nil, err
			}
		}
	}

	return &CatalogTitles{printer: message.NewPrinter(lang, message.Catalog(b))}, nil
}

// Title implements Titles
func (c *CatalogTitles) Title(action ActionType) string {
	return c.printer.Sprintf(EnglishTitles{}.Title(action))
}

// Description implements Titles
func (c *CatalogTitles) Description(action ActionType) string {
	desc := EnglishTitles{}.Description(action)
	if desc == "" {
		return ""
	}
	return c.printer.Sprintf(desc)
}
