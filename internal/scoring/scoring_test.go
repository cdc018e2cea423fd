package scoring

import "testing"

func TestScore_Tiers(t *testing.T) {
	cases := []struct {
		accuracy int64
		want     int
	}{
		{0, 100},
		{50, 100},
		{51, 80},
		{100, 80},
		{101, 60},
		{200, 60},
		{201, 40},
		{300, 40},
		{301, 20},
		{500, 20},
		{501, 10},
		{10000, 10},
	}
	for _, c := range cases {
		if got := Score(c.accuracy); got != c.want {
			t.Errorf("Score(%d) = %d, want %d", c.accuracy, got, c.want)
		}
	}
}

func TestScore_Monotone(t *testing.T) {
	prev := Score(0)
	for acc := int64(1); acc <= 1000; acc++ {
		got := Score(acc)
		if got > prev {
			t.Fatalf("Score(%d) = %d increased from Score(%d) = %d", acc, got, acc-1, prev)
		}
		prev = got
	}
}
