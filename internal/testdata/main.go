package testdata

import (
	"encoding/json"

	"git.lost.host/meutraa/hero/internal/game"
)

// ChartFile is data written in the chart file format
const ChartFile = "0 1.2345\n2 1.5000\n4 1.7500\n1 2.0000\n1 2.2500\n3 2.5000\n0 3.0000\n2 3.0000\n4 3.4000\n3 4.0001\n1 4.5000\n0 5.1250\n"

const data = `[
	{"Lane": 0, "Time": 1234500000},
	{"Lane": 2, "Time": 1500000000},
	{"Lane": 4, "Time": 1750000000},
	{"Lane": 1, "Time": 2000000000},
	{"Lane": 1, "Time": 2250000000},
	{"Lane": 3, "Time": 2500000000},
	{"Lane": 0, "Time": 3000000000},
	{"Lane": 2, "Time": 3000000000},
	{"Lane": 4, "Time": 3400000000},
	{"Lane": 3, "Time": 4000100000},
	{"Lane": 1, "Time": 4500000000},
	{"Lane": 0, "Time": 5125000000}
]`

func GetChart() (game.Chart, error) {
	var chart game.Chart
	if err := json.Unmarshal([]byte(data), &chart); nil != err {
		return nil, err
	}
	return chart, nil
}
