package web

// The page polls /data every 250 ms and redraws unless the pipeline is
// paused.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>liveplot {{.Kind}}</title>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
<style>
html, body { margin: 0; height: 100%; }
#chart { width: 95vw; height: 95vh; }
</style>
</head>
<body>
<div id="chart"></div>
<script>
const layout = {
	title: { text: "-" },
	font: { size: 16 },
	margin: { l: 60, r: 0, t: 30, b: 40 },
	plot_bgcolor: "rgba(0,0,0,0)",
	xaxis: {
		title: { text: {{.XLabel}} },
		ticks: "inside", mirror: "ticks", linecolor: "#444",
		showline: true, zeroline: false, showgrid: false
	},
	yaxis: {
		title: { text: {{.YLabel}} },
		ticks: "inside", mirror: "ticks", linecolor: "#444",
		showline: true, zeroline: false, showgrid: false
	}
};

Plotly.newPlot("chart", [], layout);

async function refresh() {
	try {
		const resp = await fetch("/data");
		const chart = await resp.json();
		if (chart.paused) {
			return;
		}
		const traces = chart.traces.map(t => ({
			x: t.x, y: t.y, name: t.name, mode: "lines+markers"
		}));
		layout.title.text = chart.title;
		Plotly.react("chart", traces, layout);
	} catch (err) {
		console.error("refresh failed", err);
	}
}

setInterval(refresh, 250);
</script>
</body>
</html>
`
