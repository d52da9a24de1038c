package rowbinary

import (
	"fmt"
	"strconv"
)

// ParseType parses a textual type descriptor into a type tree.
//
// The grammar is recursive, parenthesized, and case-sensitive:
//
//	type   := ident params?
//	params := '(' arg (',' arg)* ')'
//	arg    := type | integer | quoted_string | ident '=' integer | ident type
//
// Whitespace between tokens is ignored; quoted labels use single quotes with
// backslash escaping for `\\` and `\'`. Unknown identifiers yield
// ErrUnsupportedType; malformed descriptors yield a TypeParseError carrying
// the offending offset.
func ParseType(s string) (*TypeDesc, error) {
	p := &typeParser{input: s}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return nil, p.errorf("unexpected trailing input")
	}
	return t, nil
}

type typeParser struct {
	input string
	pos   int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return &TypeParseError{
		Input:   p.input,
		Offset:  p.pos,
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *typeParser) skipSpaces() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// peek returns the next byte without consuming it, or 0 at end of input.
func (p *typeParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *typeParser) expect(c byte) error {
	p.skipSpaces()
	if p.peek() != c {
		return p.errorf("expected %q", string(c))
	}
	p.pos++
	return nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (p *typeParser) parseIdent() (string, error) {
	p.skipSpaces()
	start := p.pos
	if p.pos >= len(p.input) || !isIdentStart(p.input[p.pos]) {
		return "", p.errorf("expected identifier")
	}
	for p.pos < len(p.input) && isIdentByte(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos], nil
}

func (p *typeParser) parseInt() (int64, error) {
	p.skipSpaces()
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start || (p.pos == start+1 && p.input[start] == '-') {
		return 0, p.errorf("expected integer")
	}
	n, err := strconv.ParseInt(p.input[start:p.pos], 10, 64)
	if err != nil {
		return 0, p.errorf("integer out of range")
	}
	return n, nil
}

// parseQuoted consumes a single-quoted label, honoring the `\\` and `\'`
// escapes. Whitespace before the opening quote is skipped; whitespace inside
// the quotes is kept as part of the label.
func (p *typeParser) parseQuoted() (string, error) {
	p.skipSpaces()
	if p.peek() != '\'' {
		return "", p.errorf("expected quoted label")
	}
	p.pos++
	var out []byte
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case '\'':
			p.pos++
			return string(out), nil
		case '\\':
			if p.pos+1 >= len(p.input) {
				return "", p.errorf("unterminated escape")
			}
			next := p.input[p.pos+1]
			if next != '\\' && next != '\'' {
				return "", p.errorf("unsupported escape %q", string(rune(next)))
			}
			out = append(out, next)
			p.pos += 2
		default:
			out = append(out, c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated quoted label")
}

func (p *typeParser) parseType() (*TypeDesc, error) {
	ident, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	switch ident {
	case "UInt8":
		return p.leaf(KindUInt8)
	case "UInt16":
		return p.leaf(KindUInt16)
	case "UInt32":
		return p.leaf(KindUInt32)
	case "UInt64":
		return p.leaf(KindUInt64)
	case "UInt128":
		return p.leaf(KindUInt128)
	case "UInt256":
		return p.leaf(KindUInt256)
	case "Int8":
		return p.leaf(KindInt8)
	case "Int16":
		return p.leaf(KindInt16)
	case "Int32":
		return p.leaf(KindInt32)
	case "Int64":
		return p.leaf(KindInt64)
	case "Int128":
		return p.leaf(KindInt128)
	case "Int256":
		return p.leaf(KindInt256)
	case "Float32":
		return p.leaf(KindFloat32)
	case "Float64":
		return p.leaf(KindFloat64)
	case "BFloat16":
		return p.leaf(KindBFloat16)
	case "Float16":
		return p.leaf(KindFloat16)
	case "Bool":
		return p.leaf(KindBool)
	case "String":
		return p.leaf(KindString)
	case "Date":
		return p.leaf(KindDate)
	case "Date32":
		return p.leaf(KindDate32)
	case "UUID":
		return p.leaf(KindUUID)
	case "IPv4":
		return p.leaf(KindIPv4)
	case "IPv6":
		return p.leaf(KindIPv6)
	case "FixedString":
		return p.parseFixedString()
	case "DateTime":
		return p.parseDateTime()
	case "DateTime64":
		return p.parseDateTime64()
	case "Decimal":
		return p.parseDecimal()
	case "Decimal32":
		return p.parseSizedDecimal(KindDecimal32, maxPrecisionDecimal32)
	case "Decimal64":
		return p.parseSizedDecimal(KindDecimal64, maxPrecisionDecimal64)
	case "Decimal128":
		return p.parseSizedDecimal(KindDecimal128, maxPrecisionDecimal128)
	case "Decimal256":
		return p.parseSizedDecimal(KindDecimal256, maxPrecisionDecimal256)
	case "Enum8":
		return p.parseEnum(KindEnum8)
	case "Enum16":
		return p.parseEnum(KindEnum16)
	case "Nullable":
		return p.parseNullable()
	case "LowCardinality":
		return p.parseWrapped(KindLowCardinality)
	case "Array":
		return p.parseWrapped(KindArray)
	case "Map":
		return p.parseMap()
	case "Tuple":
		return p.parseTuple()
	case "Nested":
		return p.parseNested()
	case "Dynamic":
		return p.parseDynamic()
	default:
		return nil, &UnsupportedTypeError{Name: ident}
	}
}

// leaf builds a parameterless type and rejects a stray argument list.
func (p *typeParser) leaf(kind Kind) (*TypeDesc, error) {
	p.skipSpaces()
	if p.peek() == '(' {
		return nil, p.errorf("%s takes no arguments", kind)
	}
	return &TypeDesc{Kind: kind}, nil
}

func (p *typeParser) parseFixedString() (*TypeDesc, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	n, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	if n < 0 || n > int64(maxFixedStringLength) {
		return nil, p.errorf("FixedString length %d out of range", n)
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &TypeDesc{Kind: KindFixedString, Length: int(n)}, nil
}

func (p *typeParser) parseDateTime() (*TypeDesc, error) {
	p.skipSpaces()
	if p.peek() != '(' {
		return &TypeDesc{Kind: KindDateTime}, nil
	}
	p.pos++
	tz, err := p.parseQuoted()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &TypeDesc{Kind: KindDateTime, Timezone: tz}, nil
}

func (p *typeParser) parseDateTime64() (*TypeDesc, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	prec, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	if prec < 0 || prec > 9 {
		return nil, p.errorf("DateTime64 precision %d out of range", prec)
	}
	t := &TypeDesc{Kind: KindDateTime64, Precision: int(prec)}
	p.skipSpaces()
	if p.peek() == ',' {
		p.pos++
		tz, err := p.parseQuoted()
		if err != nil {
			return nil, err
		}
		t.Timezone = tz
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *typeParser) parseDecimal() (*TypeDesc, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	prec, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	if prec < 1 || prec > maxPrecisionDecimal256 {
		return nil, p.errorf("Decimal precision %d out of range", prec)
	}
	if err := p.expect(','); err != nil {
		return nil, err
	}
	scale, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	if scale < 0 || scale > prec {
		return nil, p.errorf("Decimal scale %d out of range for precision %d", scale, prec)
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &TypeDesc{Kind: KindDecimal, Precision: int(prec), Scale: int(scale)}, nil
}

func (p *typeParser) parseSizedDecimal(kind Kind, maxPrecision int) (*TypeDesc, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	scale, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	if scale < 0 || scale > int64(maxPrecision) {
		return nil, p.errorf("%s scale %d out of range", kind, scale)
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &TypeDesc{Kind: kind, Scale: int(scale)}, nil
}

func (p *typeParser) parseEnum(kind Kind) (*TypeDesc, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var variants []EnumVariant
	for {
		label, err := p.parseQuoted()
		if err != nil {
			return nil, err
		}
		if err := p.expect('='); err != nil {
			return nil, err
		}
		code, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		lo, hi := int64(-32768), int64(32767)
		if kind == KindEnum8 {
			lo, hi = -128, 127
		}
		if code < lo || code > hi {
			return nil, p.errorf("%s code %d out of range", kind, code)
		}
		variants = append(variants, EnumVariant{Name: label, Code: int16(code)})
		p.skipSpaces()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	t := &TypeDesc{Kind: kind, Variants: variants}
	if err := validateEnum(kind, variants); err != nil {
		return nil, p.errorf("%v", err)
	}
	return t, nil
}

func (p *typeParser) parseNullable() (*TypeDesc, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	inner, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if inner.Kind == KindNullable || inner.Kind == KindLowCardinality {
		return nil, p.errorf("Nullable cannot wrap %s", inner.Kind)
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &TypeDesc{Kind: KindNullable, Elem: inner}, nil
}

func (p *typeParser) parseWrapped(kind Kind) (*TypeDesc, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	inner, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &TypeDesc{Kind: kind, Elem: inner}, nil
}

func (p *typeParser) parseMap() (*TypeDesc, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	key, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !isValidMapKey(key) {
		return nil, p.errorf("Map key %s is not a hashable scalar", key.TypeName())
	}
	if err := p.expect(','); err != nil {
		return nil, err
	}
	value, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &TypeDesc{Kind: KindMap, Key: key, Value: value}, nil
}

func (p *typeParser) parseTuple() (*TypeDesc, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.peek() == ')' {
		p.pos++
		return &TypeDesc{Kind: KindTuple}, nil
	}
	var items []TupleItem
	for {
		item, err := p.parseTupleItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		p.skipSpaces()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &TypeDesc{Kind: KindTuple, Items: items}, nil
}

// parseTupleItem handles the `ident type` and bare `type` argument forms.
// Both start with an identifier; the item is named exactly when a second
// identifier follows the first.
func (p *typeParser) parseTupleItem() (TupleItem, error) {
	p.skipSpaces()
	start := p.pos
	name, err := p.parseIdent()
	if err != nil {
		return TupleItem{}, err
	}
	p.skipSpaces()
	if c := p.peek(); isIdentStart(c) {
		ty, err := p.parseType()
		if err != nil {
			return TupleItem{}, err
		}
		return TupleItem{Name: name, Type: ty}, nil
	}
	p.pos = start
	ty, err := p.parseType()
	if err != nil {
		return TupleItem{}, err
	}
	return TupleItem{Type: ty}, nil
}

// parseNested rewrites Nested(name Type, ...) to Array(Tuple(name Type, ...)).
func (p *typeParser) parseNested() (*TypeDesc, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var items []TupleItem
	for {
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		items = append(items, TupleItem{Name: name, Type: ty})
		p.skipSpaces()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &TypeDesc{
		Kind: KindArray,
		Elem: &TypeDesc{Kind: KindTuple, Items: items},
	}, nil
}

func (p *typeParser) parseDynamic() (*TypeDesc, error) {
	p.skipSpaces()
	if p.peek() != '(' {
		return &TypeDesc{Kind: KindDynamic}, nil
	}
	p.pos++
	ident, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if ident != "max_types" {
		return nil, p.errorf("unknown Dynamic parameter %q", ident)
	}
	if err := p.expect('='); err != nil {
		return nil, err
	}
	n, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	if n < 1 || n > 255 {
		return nil, p.errorf("Dynamic max_types %d out of range", n)
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &TypeDesc{Kind: KindDynamic, MaxTypes: int(n)}, nil
}
