package primitives

import (
	"math/big"
	"testing"

	"zyxt/internal/ast"
)

func callMethod(t *testing.T, ty ast.Type, op string, args ...ast.Value) ast.Value {
	t.Helper()
	d, ok := ty.(*ast.DefType)
	if !ok {
		t.Fatalf("type %v is not a *ast.DefType", ty)
	}
	entry, ok := d.NamespaceM[op]
	if !ok {
		t.Fatalf("%s has no %q method", d.Name, op)
	}
	proc, ok := entry.Value.(*ast.Proc)
	if !ok {
		t.Fatalf("%s.%s is not callable", d.Name, op)
	}
	v, err := proc.Builtin(args)
	if err != nil {
		t.Fatalf("%s.%s(%v): unexpected error %v", d.Name, op, args, err)
	}
	return v
}

func TestIntArithmetic(t *testing.T) {
	i32 := Lookup("i32")
	sum := callMethod(t, i32, "_add", ast.NewInt(ast.I32, 2), ast.NewInt(ast.I32, 3))
	if sum.(*ast.IntValue).V.Int64() != 5 {
		t.Errorf("2 + 3 = %v, want 5", sum)
	}
}

func TestIntDivideByZero(t *testing.T) {
	i32 := Lookup("i32")
	d, _ := i32.(*ast.DefType)
	proc := d.NamespaceM["_div"].Value.(*ast.Proc)
	_, zerr := proc.Builtin([]ast.Value{ast.NewInt(ast.I32, 1), ast.NewInt(ast.I32, 0)})
	if zerr == nil {
		t.Fatal("expected a division-by-zero error")
	}
	if zerr.Code != "I003" {
		t.Errorf("error code = %s, want I003", zerr.Code)
	}
}

func TestIntOverflowRejected(t *testing.T) {
	i8 := Lookup("i8")
	d := i8.(*ast.DefType)
	proc := d.NamespaceM["_add"].Value.(*ast.Proc)
	_, zerr := proc.Builtin([]ast.Value{ast.NewInt(ast.I8, 120), ast.NewInt(ast.I8, 100)})
	if zerr == nil {
		t.Fatal("expected an overflow error for i8(120) + i8(100)")
	}
	if zerr.Code != "I001" {
		t.Errorf("error code = %s, want I001", zerr.Code)
	}
}

func TestIntComparisons(t *testing.T) {
	i32 := Lookup("i32")
	lt := callMethod(t, i32, "_lt", ast.NewInt(ast.I32, 1), ast.NewInt(ast.I32, 2))
	if !lt.(*ast.BoolValue).V {
		t.Error("1 < 2 should be true")
	}
	eq := callMethod(t, i32, "_eq", ast.NewInt(ast.I32, 2), ast.NewInt(ast.I32, 2))
	if !eq.(*ast.BoolValue).V {
		t.Error("2 == 2 should be true")
	}
}

func TestBigIntMultiplication(t *testing.T) {
	ibig := Lookup("ibig")
	a := &ast.BigIntValue{Signed: true, V: big.NewInt(123456789)}
	b := &ast.BigIntValue{Signed: true, V: big.NewInt(987654321)}
	product := callMethod(t, ibig, "_mul", a, b)
	want := new(big.Int).Mul(a.V, b.V)
	if product.(*ast.BigIntValue).V.Cmp(want) != 0 {
		t.Errorf("ibig mul = %v, want %v", product, want)
	}
}

func TestUnsignedBigIntRejectsNegative(t *testing.T) {
	ubig := Lookup("ubig")
	d := ubig.(*ast.DefType)
	proc := d.NamespaceM["_sub"].Value.(*ast.Proc)
	a := &ast.BigIntValue{Signed: false, V: big.NewInt(1)}
	b := &ast.BigIntValue{Signed: false, V: big.NewInt(2)}
	_, zerr := proc.Builtin([]ast.Value{a, b})
	if zerr == nil {
		t.Fatal("expected ubig(1) - ubig(2) to fail: result would be negative")
	}
	if zerr.Code != "I001" {
		t.Errorf("error code = %s, want I001", zerr.Code)
	}
}

func TestFloatArithmeticAndDivideByZero(t *testing.T) {
	f64 := Lookup("f64")
	sum := callMethod(t, f64, "_add", &ast.FloatValue{Kind: ast.F64, V: 1.5}, &ast.FloatValue{Kind: ast.F64, V: 2.5})
	if sum.(*ast.FloatValue).V != 4.0 {
		t.Errorf("1.5 + 2.5 = %v, want 4.0", sum)
	}
	d := f64.(*ast.DefType)
	proc := d.NamespaceM["_div"].Value.(*ast.Proc)
	_, zerr := proc.Builtin([]ast.Value{&ast.FloatValue{Kind: ast.F64, V: 1}, &ast.FloatValue{Kind: ast.F64, V: 0}})
	if zerr == nil || zerr.Code != "I003" {
		t.Fatalf("1.0 / 0.0: error = %v, want I003", zerr)
	}
}

func TestStrConcatAndComparison(t *testing.T) {
	str := Lookup("str")
	cat := callMethod(t, str, "_concat", &ast.StrValue{V: "ab"}, &ast.StrValue{V: "cd"})
	if cat.(*ast.StrValue).V != "abcd" {
		t.Errorf("concat = %v, want abcd", cat)
	}
	lt := callMethod(t, str, "_lt", &ast.StrValue{V: "a"}, &ast.StrValue{V: "b"})
	if !lt.(*ast.BoolValue).V {
		t.Error(`"a" < "b" should be true`)
	}
}

func TestStrLenUpperLower(t *testing.T) {
	str := Lookup("str")
	length := callMethod(t, str, "len", &ast.StrValue{V: "hello"})
	if length.(*ast.IntValue).V.Int64() != 5 {
		t.Errorf("len(\"hello\") = %v, want 5", length)
	}
	upper := callMethod(t, str, "upper", &ast.StrValue{V: "hi"})
	if upper.(*ast.StrValue).V != "HI" {
		t.Errorf("upper = %v, want HI", upper)
	}
	lower := callMethod(t, str, "lower", &ast.StrValue{V: "HI"})
	if lower.(*ast.StrValue).V != "hi" {
		t.Errorf("lower = %v, want hi", lower)
	}
}

func TestStrToIntTypecast(t *testing.T) {
	str := Lookup("str")
	d := str.(*ast.DefType)
	proc := d.NamespaceM["_typecast"].Value.(*ast.Proc)
	v, zerr := proc.Builtin([]ast.Value{&ast.StrValue{V: "42"}, &ast.TypeValue{T: Lookup("i32")}})
	if zerr != nil {
		t.Fatalf(`"42" -> i32: unexpected error %v`, zerr)
	}
	if v.(*ast.IntValue).V.Int64() != 42 {
		t.Errorf(`"42" -> i32 = %v, want 42`, v)
	}

	_, zerr = proc.Builtin([]ast.Value{&ast.StrValue{V: "nope"}, &ast.TypeValue{T: Lookup("i32")}})
	if zerr == nil {
		t.Fatal(`"nope" -> i32: expected an error`)
	}
	if zerr.Code != "I001" {
		t.Errorf("error code = %s, want I001", zerr.Code)
	}
}

func TestBoolNotAndEquality(t *testing.T) {
	b := Lookup("bool")
	not := callMethod(t, b, "_not", &ast.BoolValue{V: true})
	if not.(*ast.BoolValue).V {
		t.Error("!true should be false")
	}
	eq := callMethod(t, b, "_eq", &ast.BoolValue{V: true}, &ast.BoolValue{V: true})
	if !eq.(*ast.BoolValue).V {
		t.Error("true == true should be true")
	}
}

func TestBoolTypecastToInt(t *testing.T) {
	b := Lookup("bool")
	d := b.(*ast.DefType)
	proc := d.NamespaceM["_typecast"].Value.(*ast.Proc)
	v, zerr := proc.Builtin([]ast.Value{&ast.BoolValue{V: true}, &ast.TypeValue{T: Lookup("i32")}})
	if zerr != nil {
		t.Fatalf("bool -> i32: unexpected error %v", zerr)
	}
	if v.(*ast.IntValue).V.Int64() != 1 {
		t.Errorf("true -> i32 = %v, want 1", v)
	}
}

func TestIntIdentityAndTypeTypecast(t *testing.T) {
	i32 := Lookup("i32")
	d := i32.(*ast.DefType)
	proc := d.NamespaceM["_typecast"].Value.(*ast.Proc)

	same, zerr := proc.Builtin([]ast.Value{ast.NewInt(ast.I32, 9), &ast.TypeValue{T: i32}})
	if zerr != nil {
		t.Fatalf("i32 -> i32: unexpected error %v", zerr)
	}
	if same.(*ast.IntValue).V.Int64() != 9 {
		t.Errorf("i32(9) -> i32 = %v, want 9", same)
	}

	asStr, zerr := proc.Builtin([]ast.Value{ast.NewInt(ast.I32, 9), &ast.TypeValue{T: Lookup("str")}})
	if zerr != nil {
		t.Fatalf("i32 -> str: unexpected error %v", zerr)
	}
	if asStr.(*ast.StrValue).V != "9" {
		t.Errorf("i32(9) -> str = %v, want \"9\"", asStr)
	}
}

func TestTypeValueEqualityAndBoolTypecast(t *testing.T) {
	typeT := Lookup("type")
	eq := callMethod(t, typeT, "_eq", &ast.TypeValue{T: Lookup("i32")}, &ast.TypeValue{T: Lookup("i32")})
	if !eq.(*ast.BoolValue).V {
		t.Error("i32 == i32 should be true")
	}
	ne := callMethod(t, typeT, "_eq", &ast.TypeValue{T: Lookup("i32")}, &ast.TypeValue{T: Lookup("str")})
	if ne.(*ast.BoolValue).V {
		t.Error("i32 == str should be false")
	}
	b := callMethod(t, typeT, "_typecast", &ast.TypeValue{T: Lookup("i32")}, &ast.TypeValue{T: Lookup("bool")})
	if !b.(*ast.BoolValue).V {
		t.Error("a type value is always truthy")
	}
}

func TestUnitTypecastToBoolIsFalse(t *testing.T) {
	unitT := Lookup("unit")
	b := callMethod(t, unitT, "_typecast", ast.UnitValue{}, &ast.TypeValue{T: Lookup("bool")})
	if b.(*ast.BoolValue).V {
		t.Error("unit is always falsy")
	}
}

func TestBuiltinConstantTypesBindsTerAsItsOwnType(t *testing.T) {
	types := BuiltinConstantTypes()
	terT, ok := types["ter"]
	if !ok {
		t.Fatal(`expected "ter" in BuiltinConstantTypes`)
	}
	if ast.TypeEqual(terT, Lookup("type")) {
		t.Error(`"ter" should bind to its own DefType, not to "type" like every other primitive name`)
	}
	i32T, ok := types["i32"]
	if !ok || !ast.TypeEqual(i32T, Lookup("type")) {
		t.Error(`"i32" should bind to "type"`)
	}
}

func TestBuiltinConstantValuesBindsTerAsSingletonInstance(t *testing.T) {
	values := BuiltinConstantValues()
	terV, ok := values["ter"]
	if !ok {
		t.Fatal(`expected "ter" in BuiltinConstantValues`)
	}
	if _, ok := terV.(*ast.ClassInstance); !ok {
		t.Errorf("ter value = %T, want *ast.ClassInstance", terV)
	}
	i32V, ok := values["i32"]
	if !ok {
		t.Fatal(`expected "i32" in BuiltinConstantValues`)
	}
	if _, ok := i32V.(*ast.TypeValue); !ok {
		t.Errorf("i32 value = %T, want *ast.TypeValue", i32V)
	}
}
