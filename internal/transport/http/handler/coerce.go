package handler

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"servicecircle/internal/domain"
)

// OptFloat 宽松数值：数字或数字字符串；无法解析、NaN/Inf、null 都视为缺失，从不报错
type OptFloat struct {
	v  float64
	ok bool
}

func (o *OptFloat) UnmarshalJSON(b []byte) error {
	*o = OptFloat{}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	switch x := raw.(type) {
	case float64:
		o.set(x)
	case string:
		o.setString(x)
	}
	return nil
}

// UnmarshalParam query/form 绑定
func (o *OptFloat) UnmarshalParam(s string) error {
	*o = OptFloat{}
	o.setString(s)
	return nil
}

func (o *OptFloat) setString(s string) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err == nil {
		o.set(f)
	}
}

func (o *OptFloat) set(f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return
	}
	o.v, o.ok = f, true
}

func (o OptFloat) Ptr() *float64 {
	if !o.ok {
		return nil
	}
	v := o.v
	return &v
}

// OptInt 宽松整数：小数截断；字符串必须是整数
type OptInt struct {
	v  int
	ok bool
}

func (o *OptInt) UnmarshalJSON(b []byte) error {
	*o = OptInt{}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	switch x := raw.(type) {
	case float64:
		if !math.IsNaN(x) && !math.IsInf(x, 0) && math.Abs(x) < math.MaxInt32 {
			o.v, o.ok = int(x), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			o.v, o.ok = n, true
		}
	}
	return nil
}

func (o OptInt) Ptr() *int {
	if !o.ok {
		return nil
	}
	v := o.v
	return &v
}

// pinOf 经纬度缺一即视为没有 pin
func pinOf(lat, lng OptFloat) *domain.Coord {
	return domain.NewCoord(lat.Ptr(), lng.Ptr())
}

// truthy ?history=1 / true / yes
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
