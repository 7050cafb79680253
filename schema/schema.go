// Package schema declares the fixed booking field set: every field the
// conversation can collect, its priority tier, its declared ask order and
// its optional format validator. The schema is read-only after init and is
// the only state shared between sessions.
package schema

import (
	"github.com/hvacdesk/bookingagent/types"
)

type Field struct {
	Name        string
	DisplayName string
	Description string
	Tier        types.Tier
	Required    bool
	// Validate checks the format of a collected value. It is nil for
	// fields whose content is taken as-is.
	Validate func(value string) error
}

func (f *Field) Info() types.FieldInfo {
	return types.FieldInfo{
		Name:        f.Name,
		DisplayName: f.DisplayName,
		Description: f.Description,
		Tier:        f.Tier.String(),
		Required:    f.Required,
	}
}

// fields is the full booking schema in ask order: tiers are declared
// critical→low, and the order within a tier is the order questions are
// asked in.
var fields = []Field{
	{
		Name:        "service_type",
		DisplayName: "服务类型",
		Description: "one of ac_repair, furnace_maintenance, installation, cleaning, ventilation_maintenance, other",
		Tier:        types.TierCritical,
		Required:    true,
	},
	{
		Name:        "problem_summary",
		DisplayName: "问题描述",
		Description: "short summary of the problem the technician should fix",
		Tier:        types.TierCritical,
		Required:    true,
	},
	{
		Name:        "city",
		DisplayName: "城市",
		Description: "city where service is needed",
		Tier:        types.TierCritical,
		Required:    true,
	},
	{
		Name:        "contact_name",
		DisplayName: "联系人",
		Description: "name of the contact person",
		Tier:        types.TierCritical,
		Required:    true,
	},
	{
		Name:        "contact_phone",
		DisplayName: "联系电话",
		Description: "phone number, national format",
		Tier:        types.TierCritical,
		Required:    true,
		Validate:    validatePhone,
	},
	{
		Name:        "address",
		DisplayName: "地址",
		Description: "street address of the property",
		Tier:        types.TierHigh,
		Required:    true,
	},
	{
		Name:        "property_type",
		DisplayName: "物业类型",
		Description: "one of apartment, detached_house, townhouse, commercial, other",
		Tier:        types.TierHigh,
		Required:    true,
	},
	{
		Name:        "contact_email",
		DisplayName: "电子邮箱",
		Description: "email address for the booking confirmation",
		Tier:        types.TierHigh,
		Required:    true,
		Validate:    validateEmail,
	},
	{
		Name:        "preferred_timeslots",
		DisplayName: "期望时间",
		Description: "preferred service time windows",
		Tier:        types.TierMedium,
	},
	{
		Name:        "severity",
		DisplayName: "紧急程度",
		Description: "one of critical, high, medium, low",
		Tier:        types.TierMedium,
	},
	{
		Name:        "equipment_brand",
		DisplayName: "设备品牌",
		Tier:        types.TierLow,
	},
	{
		Name:        "access_notes",
		DisplayName: "入户说明",
		Description: "how the technician gets in (buzzer code, parking, pets...)",
		Tier:        types.TierLow,
	},
	{
		Name:        "constraints",
		DisplayName: "特殊要求",
		Tier:        types.TierLow,
	},
}

var byName = func() map[string]*Field {
	m := make(map[string]*Field, len(fields))
	for i := range fields {
		m[fields[i].Name] = &fields[i]
	}
	return m
}()

// Fields returns all fields in ask order.
func Fields() []*Field {
	out := make([]*Field, 0, len(fields))
	for i := range fields {
		out = append(out, &fields[i])
	}
	return out
}

// Lookup returns the field descriptor by name. Unknown names return false,
// callers are expected to ignore such fields rather than fail.
func Lookup(name string) (*Field, bool) {
	f, ok := byName[name]
	return f, ok
}

// TierFields returns the fields of one tier in declared order.
func TierFields(tier types.Tier) []*Field {
	var out []*Field
	for i := range fields {
		if fields[i].Tier == tier {
			out = append(out, &fields[i])
		}
	}
	return out
}

// ServiceTypeNames maps service_type values to display labels.
var ServiceTypeNames = map[string]string{
	"ac_repair":               "AC Repair",
	"furnace_maintenance":     "Furnace Maintenance",
	"installation":            "Equipment Installation",
	"cleaning":                "Cleaning Service",
	"ventilation_maintenance": "Ventilation System Maintenance",
	"other":                   "Other Service",
}
