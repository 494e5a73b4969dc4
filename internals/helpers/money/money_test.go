package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentOfHalfUp(t *testing.T) {
	// 20% dari Rp 50,00 (5000 sen) = Rp 10,00 persis.
	assert.Equal(t, Cents(1000), PercentOf(Cents(5000), 20))

	// 33% dari 100 sen = 33 sen (tanpa sisa pembulatan).
	assert.Equal(t, Cents(33), PercentOf(Cents(100), 33))

	// 50% dari 25 sen = 12,5 -> dibulatkan ke atas jadi 13.
	assert.Equal(t, Cents(13), PercentOf(Cents(25), 50))

	// 50% dari 23 sen = 11,5 -> 12.
	assert.Equal(t, Cents(12), PercentOf(Cents(23), 50))

	// 10% dari 4 sen = 0,4 -> 0.
	assert.Equal(t, Cents(0), PercentOf(Cents(4), 10))

	// 100% identitas.
	assert.Equal(t, Cents(789), PercentOf(Cents(789), 100))
}

func TestPercentOfDegenerate(t *testing.T) {
	assert.Equal(t, Cents(0), PercentOf(0, 50))
	assert.Equal(t, Cents(0), PercentOf(-100, 50))
	assert.Equal(t, Cents(0), PercentOf(1000, 0))
	assert.Equal(t, Cents(0), PercentOf(1000, -5))
}

func TestCapAt(t *testing.T) {
	assert.Equal(t, Cents(500), Cents(900).CapAt(500))
	assert.Equal(t, Cents(300), Cents(300).CapAt(500))
	// Tanpa batas ketika max <= 0.
	assert.Equal(t, Cents(900), Cents(900).CapAt(0))
}

func TestFloorZero(t *testing.T) {
	assert.Equal(t, Cents(0), Cents(-250).FloorZero())
	assert.Equal(t, Cents(250), Cents(250).FloorZero())
}

func TestRupiah(t *testing.T) {
	assert.Equal(t, int64(1500), Cents(150000).Rupiah())
	// Sisa sen dipotong ke bawah.
	assert.Equal(t, int64(1500), Cents(150099).Rupiah())
	assert.Equal(t, Cents(150000), FromRupiah(1500))
}

func TestString(t *testing.T) {
	assert.Equal(t, "1500.00", Cents(150000).String())
	assert.Equal(t, "0.05", Cents(5).String())
}
