// Package render draws a publish plan as a node-link diagram.
//
// Each package in the plan becomes a box labelled with its published name;
// an arrow points from a package to each in-tree package it depends on.
// Roots are drawn bold.
//
//	dot := render.ToDOT(plan, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [ToDOT] output can also be fed to external Graphviz tools. [RenderSVG]
// uses [github.com/goccy/go-graphviz], which runs Graphviz in-process.
package render
