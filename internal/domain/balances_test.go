package domain

import (
	"encoding/json"
	"testing"
)

func TestBalancesMarshalJSON(t *testing.T) {
	b := Balances{
		USD: mustDecimal(t, "7500"),
		EUR: mustDecimal(t, "6900.5"),
		BTC: mustDecimal(t, "0.250000000000"),
	}

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"usd":"7500.00","eur":"6900.50","btc":"0.25"}`
	if string(data) != want {
		t.Errorf("marshaled = %s, want %s", data, want)
	}
}

func TestBalancesRoundTrip(t *testing.T) {
	b := Balances{
		USD: mustDecimal(t, "1234.56"),
		EUR: mustDecimal(t, "1111.11"),
		BTC: mustDecimal(t, "0.123456789012"),
	}

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Balances
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !got.USD.Equal(b.USD) || !got.EUR.Equal(b.EUR) || !got.BTC.Equal(b.BTC) {
		t.Errorf("round trip = %+v, want %+v", got, b)
	}
}

func TestBalancesAdd(t *testing.T) {
	a := Balances{USD: mustDecimal(t, "10.50"), EUR: mustDecimal(t, "9"), BTC: mustDecimal(t, "0.001")}
	b := Balances{USD: mustDecimal(t, "4.50"), EUR: mustDecimal(t, "1"), BTC: mustDecimal(t, "0.002")}

	sum := a.Add(b)
	if !sum.USD.Equal(mustDecimal(t, "15")) {
		t.Errorf("USD = %s, want 15", sum.USD)
	}
	if !sum.EUR.Equal(mustDecimal(t, "10")) {
		t.Errorf("EUR = %s, want 10", sum.EUR)
	}
	if !sum.BTC.Equal(mustDecimal(t, "0.003")) {
		t.Errorf("BTC = %s, want 0.003", sum.BTC)
	}
}
