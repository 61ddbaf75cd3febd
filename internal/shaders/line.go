package shaders

// LineVertex expands each segment vertex along its perpendicular by half the
// stroke width. Positions are in window pixels with the origin top left.
const LineVertex = `#version 410 core
layout (location = 0) in vec2 position;
layout (location = 1) in vec2 perp;
layout (location = 2) in float width;
layout (location = 3) in vec4 color;

uniform vec2 resolution;

out vec4 vColor;

void main() {
    vec2 p = position + perp * max(width, 1.0) * 0.5;
    vec2 ndc = p / resolution * 2.0 - 1.0;
    gl_Position = vec4(ndc.x, -ndc.y, 0.0, 1.0);
    vColor = color;
}
`

const LineFragment = `#version 410 core
in vec4 vColor;
out vec4 FragColor;

void main() {
    FragColor = vColor;
}
`
