package html

// The browser part of the UI.
//
// Clicking the image recentres on the clicked pixel, the arrow keys pan by a
// tenth of the image, '+' and '_' zoom in and out by the factor in the zoom
// box. Every request goes over the /ws socket and is answered with the new
// frame; the banner and the histogram are fetched after each frame.
var UI = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Chaos</title>
<style>
  body { font-family: sans-serif; }
  #frame { cursor: crosshair; display: block; }
  #status { color: #a00; }
</style>
<script type="text/javascript">
window.addEventListener("load", function() {
  var busy = false;
  var view = null;
  var frame = document.getElementById("frame");
  var status = document.getElementById("status");
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");

  function send(cmd) {
    busy = true;
    status.textContent = "calculating...";
    ws.send(JSON.stringify(cmd));
  }

  ws.onopen = function() { send({op: "recalc"}); };
  ws.onclose = function() { status.textContent = "connection closed"; };
  ws.onmessage = function(e) {
    busy = false;
    var r = JSON.parse(e.data);
    if (r.error) {
      status.textContent = r.error;
      return;
    }
    status.textContent = "";
    frame.src = "data:image/png;base64," + r.image;
    view = r.view;
    loadVals(r);
    document.getElementById("hist").src = "/histogram.png?t=" + Date.now() + histQuery();
  };

  function histQuery() {
    var q = "";
    ["max", "log", "line"].forEach(function(k) {
      q += "&" + k + "=" + (document.getElementById(k).checked ? 1 : 0);
    });
    return q;
  }

  function loadVals(r) {
    document.querySelector("input[name='x']").value = r.view.centreReal;
    document.querySelector("input[name='y']").value = r.view.centreImag;
    document.querySelector("input[name='w']").value = r.view.pixelSize;
    document.querySelector("input[name='num']").value = r.view.maxIterations;
    document.querySelector("input[name='scale']").value = r.view.scale;
    document.getElementById("elapsed").textContent = r.elapsed;
  }

  frame.addEventListener("click", function(e) {
    if (busy) return; // dont do anything!
    var b = frame.getBoundingClientRect();
    send({op: "recentre", x: Math.floor(e.clientX - b.left), y: Math.floor(e.clientY - b.top)});
  });

  document.addEventListener("keydown", function(e) {
    if (busy || view === null || e.target.tagName === "INPUT") return;
    var dx = Math.max(1, Math.floor(view.width / 10));
    var dy = Math.max(1, Math.floor(view.height / 10));
    var f = parseFloat(document.querySelector("input[name='zoom']").value);
    switch (e.key) {
    case "+": send({op: "zoom", factor: f}); break;
    case "_": send({op: "zoom", factor: 1 / f}); break;
    case "ArrowLeft": send({op: "pan", h: -dx, v: 0}); break;
    case "ArrowRight": send({op: "pan", h: dx, v: 0}); break;
    case "ArrowUp": send({op: "pan", h: 0, v: -dy}); break;
    case "ArrowDown": send({op: "pan", h: 0, v: dy}); break;
    default: return;
    }
    e.preventDefault();
  });

  document.getElementById("controls").addEventListener("submit", function(e) {
    e.preventDefault();
    if (busy) return;
    var n = parseInt(document.querySelector("input[name='num']").value, 10);
    send({op: "iterations", n: n});
  });

  document.getElementById("black").addEventListener("change", function(e) {
    if (busy) {
      e.target.checked = !e.target.checked;
      return;
    }
    send({op: "mode", black: e.target.checked});
  });

  ["max", "log", "line"].forEach(function(k) {
    document.getElementById(k).addEventListener("change", function() {
      document.getElementById("hist").src = "/histogram.png?t=" + Date.now() + histQuery();
    });
  });
});
</script>
</head>
<body>
<form id="controls">
x: <input type="text" size=18 name="x" readonly>
y: <input type="text" size=18 name="y" readonly>
px: <input type="text" size=10 name="w" readonly>
scale: <input type="text" size=8 name="scale" readonly>
itrs: <input type="text" size=6 name="num">
zoom: <input type="text" size=3 name="zoom" value="2">
<label><input type="checkbox" id="black"> black</label>
&nbsp;
<input type="submit" value="Submit">
<span id="elapsed"></span>
<span id="status"></span>
</form>
<p>
<img id="frame" alt="">
<p>
<label><input type="checkbox" id="max"> include max iterations</label>
<label><input type="checkbox" id="log" checked> log counts</label>
<label><input type="checkbox" id="line" checked> line plot</label>
<br>
<img id="hist" alt="">
</body>
</html>
`
