package response

// Resp 统一信封；HTTP 状态恒为 200，结果看 Code
type Resp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// Page 分页列表的 data
type Page[T any] struct {
	Total   int64 `json:"total"`
	Offset  int   `json:"offset"`
	Limit   int   `json:"limit"`
	HasMore bool  `json:"has_more"`
	Items   []T   `json:"items"`
}

func NewPage[T any](items []T, total int64, offset, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		HasMore: int64(offset+len(items)) < total,
		Items:   items,
	}
}

// Msg 未登记的 code 按 500 文案处理
func Msg(code int) string {
	if m, ok := CodeMsgMap[code]; ok {
		return m
	}
	return CodeMsgMap[CodeServerError]
}

// OK data 为 nil 时输出 {}，客户端不必判 null
func OK(data any) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: CodeOK, Msg: Msg(CodeOK), Data: data}
}

func Error(code int, msg string) Resp {
	if msg == "" {
		msg = Msg(code)
	}
	return Resp{Code: code, Msg: msg, Data: struct{}{}}
}
