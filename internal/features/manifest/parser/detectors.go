package parser

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"dockload/internal/features/manifest/domain"
)

// draft collects raw field values before normalization and validation.
type draft struct {
	shipmentID  string
	vehicleID   string
	customer    string
	shipper     string
	destination string
	cartons     []string
	groups      []domain.CustomerGroup
	quantity    string
	value       string
	multi       bool
}

func (d *draft) set(f field, value string) {
	switch f {
	case fieldShipment:
		d.shipmentID = cleanValue(value)
	case fieldVehicle:
		d.vehicleID = cleanValue(value)
	case fieldCustomer:
		d.customer = cleanValue(value)
	case fieldShipper:
		d.shipper = cleanValue(value)
	case fieldDestination:
		d.destination = cleanValue(value)
	case fieldCartons:
		d.cartons = append(d.cartons, splitList(value)...)
	case fieldQuantity:
		d.quantity = value
	case fieldValue:
		d.value = value
	case fieldMulti:
		d.multi, _ = strconv.ParseBool(strings.TrimSpace(value))
	}
}

// detector returns a draft when it recognizes the encoding.
type detector struct {
	encoding domain.Encoding
	detect   func(raw string) (*draft, bool)
}

var structuredDetectors = []detector{
	{encoding: domain.EncodingJSON, detect: detectJSON},
	{encoding: domain.EncodingDelimited, detect: detectDelimited},
	{encoding: domain.EncodingKeyValue, detect: detectKeyValue},
	{encoding: domain.EncodingLineText, detect: detectLineText},
}

// detectJSON reads a braces-framed object. Decode failures are not recognized.
func detectJSON(raw string) (*draft, bool) {
	if !strings.HasPrefix(raw, "{") || !strings.HasSuffix(raw, "}") {
		return nil, false
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, false
	}

	d := &draft{}
	for _, key := range sortedKeys(obj) {
		v := obj[key]
		switch f := lookup(key); f {
		case fieldUnknown:
		case fieldCartons:
			d.cartons = append(d.cartons, jsonList(v)...)
		case fieldGroups:
			d.groups = append(d.groups, jsonGroups(v)...)
		case fieldMulti:
			if b, ok := v.(bool); ok {
				d.multi = b
			} else {
				d.set(f, jsonScalar(v))
			}
		default:
			d.set(f, jsonScalar(v))
		}
	}
	return d, true
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func jsonScalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func jsonList(v any) []string {
	switch t := v.(type) {
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, splitList(jsonScalar(item))...)
		}
		return out
	default:
		return splitList(jsonScalar(v))
	}
}

func jsonGroups(v any) []domain.CustomerGroup {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	groups := make([]domain.CustomerGroup, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		var g domain.CustomerGroup
		for _, key := range sortedKeys(obj) {
			switch lookup(key) {
			case fieldCustomer:
				g.CustomerName = cleanValue(jsonScalar(obj[key]))
			case fieldDestination:
				g.Destination = cleanValue(jsonScalar(obj[key]))
			case fieldCartons:
				g.CartonIDs = append(g.CartonIDs, jsonList(obj[key])...)
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// detectDelimited reads pipe-separated labeled tokens, e.g. "VEHICLE:TRK-01|CARTONS:A,B,C".
func detectDelimited(raw string) (*draft, bool) {
	if !strings.Contains(raw, "|") {
		return nil, false
	}

	d := &draft{}
	known := 0
	for _, token := range strings.Split(raw, "|") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		label, value, ok := cutLabel(token, ":=")
		if !ok {
			return nil, false
		}
		f := lookup(label)
		if f == fieldUnknown {
			continue
		}
		known++
		d.set(f, value)
	}
	return d, known > 0
}

// detectKeyValue reads comma or newline separated pairs. Bare tokens after a
// carton key continue the carton list. Unknown keys reject the encoding.
func detectKeyValue(raw string) (*draft, bool) {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	d := &draft{}
	pairs, customers := 0, 0
	inCartons := false
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		label, value, ok := cutLabel(token, ":=")
		if !ok {
			if !inCartons || strings.ContainsFunc(token, unicode.IsSpace) {
				return nil, false
			}
			d.cartons = append(d.cartons, splitList(token)...)
			continue
		}

		f := lookup(label)
		switch f {
		case fieldUnknown, fieldGroups:
			return nil, false
		case fieldCustomer:
			customers++
			if customers > 1 {
				return nil, false
			}
		}
		d.set(f, value)
		inCartons = f == fieldCartons
		pairs++
	}
	return d, pairs > 0
}

// detectLineText reads "Label: value" lines. Rules, headers and unknown labels
// are skipped; bullets under a "Cartons:" heading are cartons. Several
// "Customer:" lines open customer groups.
func detectLineText(raw string) (*draft, bool) {
	d := &draft{}
	var groups []domain.CustomerGroup
	known := 0
	inCartons := false

	addCartons := func(ids []string) {
		if len(groups) > 0 {
			last := &groups[len(groups)-1]
			last.CartonIDs = append(last.CartonIDs, ids...)
			return
		}
		d.cartons = append(d.cartons, ids...)
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isRule(line) {
			inCartons = false
			continue
		}
		if item, ok := bulletItem(line); ok && inCartons {
			addCartons(splitList(item))
			continue
		}

		label, value, ok := cutLabel(line, ":")
		if !ok {
			if inCartons && !strings.ContainsFunc(line, unicode.IsSpace) {
				addCartons(splitList(line))
				continue
			}
			inCartons = false
			continue
		}

		f := lookup(label)
		if f == fieldUnknown {
			inCartons = false
			continue
		}
		known++
		inCartons = false
		switch f {
		case fieldCustomer:
			groups = append(groups, domain.CustomerGroup{CustomerName: cleanValue(value)})
		case fieldDestination:
			if len(groups) > 0 {
				groups[len(groups)-1].Destination = cleanValue(value)
			} else {
				d.set(f, value)
			}
		case fieldCartons:
			inCartons = true
			addCartons(splitList(value))
		default:
			d.set(f, value)
		}
	}

	switch {
	case len(groups) == 1:
		g := groups[0]
		d.customer = g.CustomerName
		if g.Destination != "" {
			d.destination = g.Destination
		}
		d.cartons = append(d.cartons, g.CartonIDs...)
	case len(groups) > 1:
		if len(d.cartons) > 0 {
			groups[0].CartonIDs = append(d.cartons, groups[0].CartonIDs...)
			d.cartons = nil
		}
		d.groups = groups
		d.multi = true
	}
	return d, known > 0
}

func isRule(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, r := range line {
		if !strings.ContainsRune("-=*_#~ ", r) {
			return false
		}
	}
	return true
}

// bulletItem strips a list marker such as "-", "*", "•" or "3.".
func bulletItem(line string) (string, bool) {
	for _, marker := range []string{"-", "*", "•", "+"} {
		if rest, ok := strings.CutPrefix(line, marker); ok {
			return strings.TrimSpace(rest), true
		}
	}
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		return strings.TrimSpace(line[i+1:]), true
	}
	return "", false
}

// detectBareID strips every non-alphanumeric from the whole input, spaces
// included, and uses the rest as both shipment and carton id.
func detectBareID(raw string) (*draft, bool) {
	id := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)
	if id == "" {
		return nil, false
	}
	return &draft{
		shipmentID: id,
		customer:   domain.PlaceholderCustomer,
		cartons:    []string{id},
	}, true
}
