package export

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// Number 千分位用点分隔，如 1.234.567
func Number(n int64) string {
	return idPrinter.Sprintf("%d", n)
}

// Rupiah 金额格式化为 "Rp 1.234.567"，不足一元的部分四舍五入
func Rupiah(d decimal.Decimal) string {
	return "Rp " + Number(d.Round(0).IntPart())
}

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var dayNames = [...]string{
	"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu",
}

// ShortDate 日/月/年，如 5/10/2026
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2/1/2006")
}

// ISODate yyyy-mm-dd
func ISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// LongDate 如 15 Oktober 2026
func LongDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2") + " " + monthNames[t.Month()-1] + " " + t.Format("2006")
}

// WeekdayDate 如 Kamis, 15 Oktober 2026
func WeekdayDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return dayNames[t.Weekday()] + ", " + LongDate(t)
}

var (
	ones  = [...]string{"", "satu", "dua", "tiga", "empat", "lima", "enam", "tujuh", "delapan", "sembilan"}
	teens = [...]string{"sepuluh", "sebelas", "dua belas", "tiga belas", "empat belas", "lima belas", "enam belas", "tujuh belas", "delapan belas", "sembilan belas"}
	tens  = [...]string{"", "", "dua puluh", "tiga puluh", "empat puluh", "lima puluh", "enam puluh", "tujuh puluh", "delapan puluh", "sembilan puluh"}
	scale = [...]string{"", "ribu", "juta", "miliar", "triliun"}
)

// Terbilang 金额的印尼语大写，如 100800 → "seratus ribu delapan ratus"
func Terbilang(n int64) string {
	if n == 0 {
		return "nol"
	}
	if n < 0 {
		return "minus " + Terbilang(-n)
	}

	var parts []string
	for i := 0; n > 0 && i < len(scale); i++ {
		chunk := int(n % 1000)
		n /= 1000
		if chunk == 0 {
			continue
		}
		words := belowThousand(chunk)
		if i > 0 {
			if chunk == 1 && i == 1 {
				words = "seribu"
			} else {
				words += " " + scale[i]
			}
		}
		parts = append([]string{words}, parts...)
	}
	return strings.Join(parts, " ")
}

func belowThousand(n int) string {
	switch {
	case n == 0:
		return ""
	case n < 10:
		return ones[n]
	case n < 20:
		return teens[n-10]
	case n < 100:
		if n%10 == 0 {
			return tens[n/10]
		}
		return tens[n/10] + " " + ones[n%10]
	default:
		hundred := "seratus"
		if n/100 > 1 {
			hundred = ones[n/100] + " ratus"
		}
		if n%100 == 0 {
			return hundred
		}
		return hundred + " " + belowThousand(n%100)
	}
}

// Capitalize 首字母大写
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
