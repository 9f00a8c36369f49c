package volumes

import (
	"strconv"
	"strings"
)

// Link is a discovered volume URL together with its 1-based position in
// discovery order. Selection never renumbers volumes.
type Link struct {
	URL   string
	Index int
}

func Number(urls []string) []Link {
	out := make([]Link, len(urls))
	for i, u := range urls {
		out[i] = Link{URL: u, Index: i + 1}
	}
	return out
}

// Filter applies a range ("2-4") or a list ("1,3") of volume indexes.
// Range wins when both are set; neither keeps every volume.
func Filter(all []Link, rng, list string) []Link {
	if rng != "" {
		return FilterRange(all, rng)
	}
	if list != "" {
		return FilterList(all, list)
	}
	return all
}

func FilterRange(all []Link, rng string) []Link {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil
	}
	start, err1 := atoi(parts[0])
	end, err2 := atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil
	}
	if start <= 0 || end <= 0 || start > end || start > len(all) {
		return nil
	}
	if end > len(all) {
		end = len(all)
	}
	return all[start-1 : end]
}

func FilterList(all []Link, list string) []Link {
	out := []Link{}
	seen := map[int]bool{}
	for n := range strings.SplitSeq(list, ",") {
		idx, err := atoi(n)
		if err != nil || idx <= 0 || idx > len(all) || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, all[idx-1])
	}
	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
