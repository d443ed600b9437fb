package main

import (
	"fmt"

	"github.com/mehy12/edumate/core"
	"github.com/mehy12/edumate/core/enrollment"
)

func (cli *commandLine) estimate(topic, speed string, classes int) error {
	topic = core.CleanString(topic)
	lspeed := enrollment.ParseLearningSpeed(speed)
	estimate := enrollment.EstimateClasses(topic, lspeed)

	count := estimate
	if classes != 0 {
		count = classes
	}
	if count < 1 {
		return enrollment.ErrInvalidClassCount
	}

	_, _ = fmt.Fprintf(cli.out, "speed: %s\n", lspeed)
	_, _ = fmt.Fprintf(cli.out, "estimated classes: %d\n", estimate)
	for i, stub := range enrollment.GenerateSessionPlan(topic, count) {
		_, _ = fmt.Fprintf(cli.out, "%3d. %s\n", i, stub.Title)
	}
	return nil
}
