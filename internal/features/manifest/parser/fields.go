package parser

import (
	"strconv"
	"strings"
	"unicode"

	"dockload/internal/features/manifest/domain"
)

type field int

const (
	fieldUnknown field = iota
	fieldShipment
	fieldVehicle
	fieldCustomer
	fieldShipper
	fieldDestination
	fieldCartons
	fieldQuantity
	fieldValue
	fieldGroups
	fieldMulti
)

// labels maps canonical labels (lowercase, alphanumerics only) to fields, so
// "shipmentId", "shipment_id", "Shipment ID" and "SHIPMENT-ID" all match.
var labels = map[string]field{
	"shipment":            fieldShipment,
	"shipmentid":          fieldShipment,
	"shipmentno":          fieldShipment,
	"shipmentnumber":      fieldShipment,
	"manifest":            fieldShipment,
	"manifestid":          fieldShipment,
	"manifestno":          fieldShipment,
	"vehicle":             fieldVehicle,
	"vehicleid":           fieldVehicle,
	"vehicleno":           fieldVehicle,
	"vehicleplate":        fieldVehicle,
	"truck":               fieldVehicle,
	"truckid":             fieldVehicle,
	"truckno":             fieldVehicle,
	"plate":               fieldVehicle,
	"customer":            fieldCustomer,
	"customername":        fieldCustomer,
	"primarycustomer":     fieldCustomer,
	"primarycustomername": fieldCustomer,
	"consignee":           fieldCustomer,
	"client":              fieldCustomer,
	"shipper":             fieldShipper,
	"shippername":         fieldShipper,
	"sender":              fieldShipper,
	"destination":         fieldDestination,
	"dest":                fieldDestination,
	"shipto":              fieldDestination,
	"deliveryaddress":     fieldDestination,
	"address":             fieldDestination,
	"cartons":             fieldCartons,
	"carton":              fieldCartons,
	"cartonid":            fieldCartons,
	"cartonids":           fieldCartons,
	"boxes":               fieldCartons,
	"packages":            fieldCartons,
	"quantity":            fieldQuantity,
	"qty":                 fieldQuantity,
	"pieces":              fieldQuantity,
	"value":               fieldValue,
	"declaredvalue":       fieldValue,
	"price":               fieldValue,
	"amount":              fieldValue,
	"customergroups":      fieldGroups,
	"groups":              fieldGroups,
	"customers":           fieldGroups,
	"multicustomer":       fieldMulti,
}

func lookup(label string) field {
	var b strings.Builder
	for _, r := range label {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return labels[b.String()]
}

// cutLabel splits "label:value" or "label=value" at whichever separator comes first.
func cutLabel(token string, seps string) (label, value string, ok bool) {
	i := strings.IndexAny(token, seps)
	if i <= 0 {
		return "", "", false
	}
	label = strings.TrimSpace(token[:i])
	if label == "" {
		return "", "", false
	}
	return label, strings.TrimSpace(token[i+1:]), true
}

// splitList splits a carton list on commas, semicolons and whitespace.
func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, `"'[]`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cleanValue(s string) string {
	return strings.Join(strings.Fields(strings.Trim(strings.TrimSpace(s), `"'`)), " ")
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if n := domain.NormalizeID(id); n != "" {
			out = append(out, n)
		}
	}
	return out
}

const (
	minQuantity = 1
	maxQuantity = 9999
	maxValue    = 9_999_999
)

// parseQuantity reads a piece count, clamped to 1..9999. Zero means absent or unreadable.
func parseQuantity(s string) int {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '-' {
			return r
		}
		return -1
	}, s)
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return min(max(n, minQuantity), maxQuantity)
}

// parseValue reads a declared value such as "$1,250.50", clamped to 0..9,999,999.
func parseValue(s string) float64 {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	return min(max(v, 0), maxValue)
}
