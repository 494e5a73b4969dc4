// Package money menangani nominal uang sebagai sen (integer).
// Semua aritmetika billing memakai tipe ini, tidak ada float.
package money

import (
	"github.com/shopspring/decimal"
)

// Cents menyimpan nominal dalam sen rupiah (1/100 rupiah).
type Cents int64

// FromRupiah mengubah nominal rupiah utuh menjadi Cents.
func FromRupiah(r int64) Cents {
	return Cents(r * 100)
}

// Rupiah membulatkan ke bawah ke rupiah utuh (dipakai gateway yang
// menolak pecahan, mis. GrossAmt Midtrans).
func (c Cents) Rupiah() int64 {
	return int64(c) / 100
}

// PercentOf menghitung percent% dari c dengan pembulatan half-up
// pada sen terakhir. percent bernilai 0..100.
func PercentOf(c Cents, percent int64) Cents {
	if c <= 0 || percent <= 0 {
		return 0
	}
	return Cents((int64(c)*percent + 50) / 100)
}

// CapAt membatasi c maksimal sebesar max. max <= 0 berarti tanpa batas.
func (c Cents) CapAt(max Cents) Cents {
	if max > 0 && c > max {
		return max
	}
	return c
}

// FloorZero memotong nilai negatif menjadi 0.
func (c Cents) FloorZero() Cents {
	if c < 0 {
		return 0
	}
	return c
}

// Decimal mengembalikan nilai rupiah sebagai decimal (2 digit pecahan).
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String memformat nominal untuk log & respons, contoh "150000.00".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}
