package policy

import (
	"fmt"
	"time"

	"casedesk/internal/model"
)

// Field is a case attribute as exposed to readers. The value doubles as the JSON key.
type Field string

const (
	FieldID           Field = "id"
	FieldAgentName    Field = "agentName"
	FieldCustomerName Field = "cxName"
	FieldPhone        Field = "phone"
	FieldEmail        Field = "email"
	FieldAddress      Field = "address"
	FieldAmount       Field = "amount"
	FieldServices     Field = "services"
	FieldIssue        Field = "issue"
	FieldDevice       Field = "device"
	FieldModel        Field = "model"
	FieldISP          Field = "isp"
	FieldPaymentMode  Field = "paymentMode"
	FieldReference    Field = "caseId"
	FieldCardNumber   Field = "cardNumber"
	FieldRemark       Field = "remark"
	FieldTechRemark   Field = "techRemark"
	FieldIssueFixed   Field = "issueFixed"
	FieldStatus       Field = "status"
	FieldFixDate      Field = "fixDate"
	FieldCreatedAt    Field = "createdAt"
	FieldUpdatedAt    Field = "updatedAt"
)

// Fields lists every exposable field in display order.
var Fields = []Field{
	FieldID, FieldAgentName, FieldCustomerName, FieldPhone, FieldEmail, FieldAddress,
	FieldAmount, FieldServices, FieldIssue, FieldDevice, FieldModel, FieldISP,
	FieldPaymentMode, FieldReference, FieldCardNumber, FieldRemark, FieldTechRemark,
	FieldIssueFixed, FieldStatus, FieldFixDate, FieldCreatedAt, FieldUpdatedAt,
}

// Rule decides how one field is exposed.
type Rule int

const (
	Hidden Rule = iota
	Plain
	Masked
	Decrypted
)

type visibilityKey struct {
	role   model.Role
	status model.CaseStatus
}

// overrides holds the exceptions to the Plain default, per (role, state).
var overrides = map[visibilityKey]map[Field]Rule{
	{model.RoleAdmin, model.CaseStatusPending}:  {FieldCardNumber: Decrypted},
	{model.RoleAdmin, model.CaseStatusResolved}: {FieldCardNumber: Decrypted},
	{model.RoleTech, model.CaseStatusPending}:   {FieldCardNumber: Hidden},
	{model.RoleTech, model.CaseStatusResolved}:  {FieldCardNumber: Hidden, FieldPhone: Masked},
	{model.RoleAgent, model.CaseStatusPending}:  {FieldCardNumber: Hidden},
	{model.RoleAgent, model.CaseStatusResolved}: {FieldCardNumber: Hidden},
}

// RuleFor returns the rule for field when role reads a case in status.
// Unknown roles see nothing.
func RuleFor(role model.Role, status model.CaseStatus, field Field) Rule {
	if _, ok := model.ParseRole(string(role)); !ok {
		return Hidden
	}
	if status != model.CaseStatusResolved {
		status = model.CaseStatusPending
	}
	if rule, ok := overrides[visibilityKey{role, status}][field]; ok {
		return rule
	}
	return Plain
}

// View is the role-scoped projection of one case.
type View map[Field]any

// String returns the field as text, or "" when absent.
func (v View) String(f Field) string {
	switch val := v[f].(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Opener reverses the at-rest encoding of a sensitive field.
type Opener interface {
	Decrypt(ciphertext string) (string, error)
}

// Project builds the view of c for role. The decision is recomputed from the
// current status on every call. opener is only consulted for Decrypted fields
// and may be nil for roles that never see them.
func Project(role model.Role, c *model.Case, opener Opener) (View, error) {
	view := make(View, len(Fields))
	for _, f := range Fields {
		switch RuleFor(role, c.Status, f) {
		case Hidden:
			continue
		case Plain:
			view[f] = fieldValue(c, f)
		case Masked:
			view[f] = MaskPhone(fmt.Sprint(fieldValue(c, f)))
		case Decrypted:
			stored, _ := fieldValue(c, f).(string)
			if stored == "" {
				continue
			}
			if opener == nil {
				return nil, fmt.Errorf("project case %s: no opener for %s", c.ID, f)
			}
			plain, err := opener.Decrypt(stored)
			if err != nil {
				return nil, fmt.Errorf("project case %s: %w", c.ID, err)
			}
			view[f] = plain
		}
	}
	return view, nil
}

// ProjectAll projects every case and stops at the first failure.
func ProjectAll(role model.Role, cases []model.Case, opener Opener) ([]View, error) {
	views := make([]View, 0, len(cases))
	for i := range cases {
		v, err := Project(role, &cases[i], opener)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func fieldValue(c *model.Case, f Field) any {
	switch f {
	case FieldID:
		return c.ID.String()
	case FieldAgentName:
		return c.AgentName
	case FieldCustomerName:
		return c.CustomerName
	case FieldPhone:
		return c.Phone
	case FieldEmail:
		return c.Email
	case FieldAddress:
		return c.Address
	case FieldAmount:
		return c.Amount
	case FieldServices:
		return c.Services
	case FieldIssue:
		return c.Issue
	case FieldDevice:
		return c.Device
	case FieldModel:
		return c.Model
	case FieldISP:
		return c.ISP
	case FieldPaymentMode:
		return c.PaymentMode
	case FieldReference:
		return c.Reference
	case FieldCardNumber:
		return c.CardNumber
	case FieldRemark:
		return c.Remark
	case FieldTechRemark:
		return c.TechRemark
	case FieldIssueFixed:
		return c.Resolved
	case FieldStatus:
		return c.Status
	case FieldFixDate:
		if c.ResolvedAt == nil {
			return nil
		}
		return *c.ResolvedAt
	case FieldCreatedAt:
		return c.CreatedAt
	case FieldUpdatedAt:
		return c.UpdatedAt
	}
	return nil
}

// Time returns the field as a time, or false when absent.
func (v View) Time(f Field) (time.Time, bool) {
	t, ok := v[f].(time.Time)
	return t, ok
}
