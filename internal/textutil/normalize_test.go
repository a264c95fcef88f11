package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"blank", "   \t\n ", ""},
		{"ascii lowercased", "Hello World", "hello world"},
		{"accents stripped", "Giá dịch vụ", "gia dich vu"},
		{"d with stroke", "Đăng ký đầu tư", "dang ky dau tu"},
		{"horn letters", "Ưu đãi của OpenLive", "uu dai cua openlive"},
		{"punctuation to space", "OpenLive là gì?", "openlive la gi"},
		{"collapse whitespace", "  giấy   phép\t\tkinh  doanh  ", "giay phep kinh doanh"},
		{"digits and underscore kept", "Gói_VIP 2024!", "goi_vip 2024"},
		{"symbols become separators", "giá/cả-sản(phẩm)", "gia ca san pham"},
		{"emoji dropped", "🔍 Tìm hiểu", "tim hieu"},
		{"invalid utf8 does not panic", "gi\xffa", "gi a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"OpenLive là gì?",
		"Giấy phép Đăng Ký Kinh Doanh của OpenLive tại Việt Nam?",
		"Hệ sinh thái OpenLive gồm 5 công ty chính...",
		"ÀÁẢÃẠ ĂẰẮẲẴẶ ÂẦẤẨẪẬ đĐ ơƠ ưƯ",
		"æøå ß ſ İstanbul",
		"tab\tnew\nline\r\nend",
		"<b>html</b> & entities &amp; ©®™",
		"mixed 日本語 text",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("gia gia ca")
	assert.Len(t, got, 2)
	assert.Contains(t, got, "gia")
	assert.Contains(t, got, "ca")

	assert.Empty(t, Tokens(""))
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("Cách trở thành cổ đông của OpenLive? Cổ đông!", 3)
	assert.Equal(t, []string{"cach", "tro", "thanh", "dong", "cua", "openlive"}, got)

	assert.Empty(t, ExtractKeywords("", 3))
}
