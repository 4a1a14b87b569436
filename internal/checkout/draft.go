package checkout

import (
	"fmt"
	"strings"

	"app/internal/domain/model"
)

// Draft はチェックアウトフォームの一時状態。送信成功かモーダルクローズで破棄される。
type Draft struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`

	PaymentMethod model.PaymentMethod `json:"paymentMethod"`

	//credit-cardのときだけ必須
	CardNumber string `json:"cardNumber,omitempty"`
	CardName   string `json:"cardName,omitempty"`
	ExpiryDate string `json:"expiryDate,omitempty"`
	CVV        string `json:"cvv,omitempty"`
}

// Validate は必須項目の存在チェックだけを行う。
// 形式チェックやLuhnチェックはしない（参照挙動どおり）。
func (d Draft) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"firstName", d.FirstName},
		{"lastName", d.LastName},
		{"email", d.Email},
		{"phone", d.Phone},
		{"address", d.Address},
		{"city", d.City},
		{"state", d.State},
		{"zipCode", d.ZipCode},
		{"country", d.Country},
	}

	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s is required", f.name)
		}
	}

	switch d.PaymentMethod {
	case model.PaymentMethodCreditCard, model.PaymentMethodPaypal, model.PaymentMethodCashOnDelivery:
	default:
		return fmt.Errorf("invalid payment method")
	}

	if d.PaymentMethod == model.PaymentMethodCreditCard {
		card := []struct {
			name  string
			value string
		}{
			{"cardNumber", d.CardNumber},
			{"cardName", d.CardName},
			{"expiryDate", d.ExpiryDate},
			{"cvv", d.CVV},
		}
		for _, f := range card {
			if strings.TrimSpace(f.value) == "" {
				return fmt.Errorf("%s is required", f.name)
			}
		}
	}

	return nil
}

// ShippingAddress はDraftを注文の配送先へ写す。
// フォームはfirstName/lastName/zipCodeで集めて、注文はfullName/postalCodeで持つ。
func (d Draft) ShippingAddress() model.ShippingAddress {
	return model.ShippingAddress{
		FullName:   strings.TrimSpace(d.FirstName + " " + d.LastName),
		Email:      d.Email,
		Phone:      d.Phone,
		Address:    d.Address,
		City:       d.City,
		State:      d.State,
		PostalCode: d.ZipCode,
		Country:    d.Country,
	}
}
